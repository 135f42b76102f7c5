package realtime

import (
	"time"
)

// LastSeenRecorder persists an identity's last-seen timestamp when it goes
// offline. Invoked fire-and-forget.
type LastSeenRecorder interface {
	RecordLastSeen(identity string, at time.Time)
}

// Presence translates registry membership changes into online/offline
// announcements to the other connected peers. Presence is tracked at identity
// granularity: an identity with several open connections stays online until
// the last of them closes.
type Presence struct {
	registry *Registry
	recorder LastSeenRecorder
}

// NewPresence creates a presence tracker and subscribes it to registry
// membership events. recorder may be nil.
func NewPresence(registry *Registry, recorder LastSeenRecorder) *Presence {
	p := &Presence{registry: registry, recorder: recorder}
	registry.AddListener(p)
	return p
}

// ConnectionAdded implements Listener. Only the first connection of an
// identity announces "online".
func (p *Presence) ConnectionAdded(identity string, first bool) {
	if !first {
		return
	}
	p.announce(identity, true)
}

// ConnectionRemoved implements Listener. Only the last connection of an
// identity announces "offline" and records last-seen.
func (p *Presence) ConnectionRemoved(identity string, last bool) {
	if !last {
		return
	}
	if p.recorder != nil {
		at := time.Now()
		go p.recorder.RecordLastSeen(identity, at)
	}
	p.announce(identity, false)
}

// announce pushes the presence transition to every peer except the identity's
// own connections.
func (p *Presence) announce(identity string, online bool) {
	data := EncodePresence(PresenceEvent{
		Identity:   identity,
		Online:     online,
		OccurredAt: time.Now(),
	})
	for _, e := range p.registry.AllEntries() {
		if e.Identity == identity {
			continue
		}
		writeOrDrop(p.registry, e, data)
	}
}
