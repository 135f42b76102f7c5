package realtime

import (
	"github.com/samber/lo"
)

// NotificationRecorder durably records a notification addressed to one user
// so it can be retrieved after reconnecting. Invoked fire-and-forget.
type NotificationRecorder interface {
	RecordNotification(identity string, n Notification)
}

// Fanout pushes server-originated notifications to connected clients on
// behalf of business code that knows nothing about connection management.
type Fanout struct {
	registry *Registry
	recorder NotificationRecorder
}

// NewFanout creates a fanout service over registry. recorder may be nil.
func NewFanout(registry *Registry, recorder NotificationRecorder) *Fanout {
	return &Fanout{registry: registry, recorder: recorder}
}

// SendToOne delivers n to every live connection of identity. An offline
// recipient is a normal outcome, not an error; the durable record is written
// regardless so the user finds the notification when they come back.
func (f *Fanout) SendToOne(identity string, n Notification) {
	if f.recorder != nil {
		go f.recorder.RecordNotification(identity, n)
	}
	data := EncodeNotification(n)
	for _, e := range f.registry.Lookup(identity) {
		writeOrDrop(f.registry, e, data)
	}
}

// SendToMany fans n out to each identity. Delivery is best effort with
// per-identity isolation, never all-or-nothing.
func (f *Fanout) SendToMany(identities []string, n Notification) {
	for _, identity := range lo.Uniq(identities) {
		f.SendToOne(identity, n)
	}
}

// SendToAll pushes n to every live connection, anonymous slots included.
// Nothing is recorded durably; callers wanting a per-user record should use
// SendToMany with an explicit identity list.
func (f *Fanout) SendToAll(n Notification) {
	data := EncodeNotification(n)
	for _, e := range f.registry.AllEntries() {
		writeOrDrop(f.registry, e, data)
	}
}

// PushToUser dispatches asynchronously so a slow or stalled peer can never
// hold up the business-logic caller.
func (f *Fanout) PushToUser(identity string, n Notification) {
	go f.SendToOne(identity, n)
}

// PushToUsers is the asynchronous form of SendToMany.
func (f *Fanout) PushToUsers(identities []string, n Notification) {
	go f.SendToMany(identities, n)
}

// PushToAll is the asynchronous form of SendToAll.
func (f *Fanout) PushToAll(n Notification) {
	go f.SendToAll(n)
}
