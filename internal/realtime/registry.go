package realtime

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conn is the write side of one live transport handle. Close must tolerate
// being called after the peer is already gone.
type Conn interface {
	WriteText(data []byte) error
	Close() error
}

// Entry is one live registered connection. A connection with an empty
// identity is an anonymous broadcast-only slot: it receives broadcasts and
// global pushes but is never a direct-message target and never appears in
// presence announcements.
type Entry struct {
	Key         uuid.UUID
	Identity    string
	ConnectedAt time.Time

	conn      Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Anonymous reports whether the entry belongs to the broadcast-only channel.
func (e *Entry) Anonymous() bool {
	return e.Identity == ""
}

// WriteText writes one text frame to the underlying handle. Transport handles
// do not tolerate interleaved writers, so all writes are serialized here;
// arrival order at the mutex is the delivery order.
func (e *Entry) WriteText(data []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.conn.WriteText(data)
}

// close shuts the underlying handle at most once, logging rather than
// propagating any close error.
func (e *Entry) close() {
	e.closeOnce.Do(func() {
		if err := e.conn.Close(); err != nil {
			log.Printf("realtime: close connection %s: %v", e.Key, err)
		}
	})
}

// Listener observes identity-level membership changes. Callbacks run outside
// the registry lock, on the goroutine that performed the mutation, and are
// never invoked for anonymous connections.
type Listener interface {
	ConnectionAdded(identity string, first bool)
	ConnectionRemoved(identity string, last bool)
}

// Registry is the concurrency-safe directory of live connections. Entries are
// keyed by a per-connection id; a separate identity index supports direct
// lookups and multiple simultaneous connections per identity (multi-device).
type Registry struct {
	mu         sync.RWMutex
	entries    map[uuid.UUID]*Entry
	byIdentity map[string]map[uuid.UUID]*Entry
	listeners  []Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:    make(map[uuid.UUID]*Entry),
		byIdentity: make(map[string]map[uuid.UUID]*Entry),
	}
}

// AddListener attaches a membership listener. Must be called during wiring,
// before connections are accepted.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Register inserts a new entry for identity (empty for anonymous) and returns
// it. The entry is a valid delivery target as soon as Register returns.
func (r *Registry) Register(identity string, conn Conn) *Entry {
	entry := &Entry{
		Key:         uuid.New(),
		Identity:    identity,
		ConnectedAt: time.Now(),
		conn:        conn,
	}

	r.mu.Lock()
	if _, dup := r.entries[entry.Key]; dup {
		r.mu.Unlock()
		panic(fmt.Sprintf("realtime: duplicate connection key %s", entry.Key))
	}
	r.entries[entry.Key] = entry
	first := false
	if identity != "" {
		set := r.byIdentity[identity]
		if set == nil {
			set = make(map[uuid.UUID]*Entry)
			r.byIdentity[identity] = set
		}
		first = len(set) == 0
		set[entry.Key] = entry
	}
	listeners := r.listeners
	r.mu.Unlock()

	if identity != "" {
		for _, l := range listeners {
			l.ConnectionAdded(identity, first)
		}
	}
	return entry
}

// Unregister removes the entry for key. Unknown keys are a no-op, so the
// normal close path and the write-failure path can both call it safely.
func (r *Registry) Unregister(key uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	last := false
	if entry.Identity != "" {
		set := r.byIdentity[entry.Identity]
		delete(set, key)
		if len(set) == 0 {
			delete(r.byIdentity, entry.Identity)
			last = true
		}
	}
	listeners := r.listeners
	r.mu.Unlock()

	if entry.Identity != "" {
		for _, l := range listeners {
			l.ConnectionRemoved(entry.Identity, last)
		}
	}
}

// Drop unregisters key and closes its handle. Used when a write failed and
// the peer is presumed dead; the owning read loop's later cleanup finds the
// entry gone and its own close becomes a no-op.
func (r *Registry) Drop(key uuid.UUID) {
	r.mu.RLock()
	entry := r.entries[key]
	r.mu.RUnlock()

	r.Unregister(key)
	if entry != nil {
		entry.close()
	}
}

// Lookup returns the live entries for identity, or nil when the identity has
// no open connection.
func (r *Registry) Lookup(identity string) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byIdentity[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Entry, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	return out
}

// AllEntries returns a snapshot of every live entry. The snapshot does not
// alias the live maps, so callers can write to handles without holding the
// registry lock.
func (r *Registry) AllEntries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// ActiveCount returns how many live connections identity currently has.
func (r *Registry) ActiveCount(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity[identity])
}

// Len returns the total number of live connections, anonymous included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// writeOrDrop writes one frame to e. A write failure is an implicit
// disconnect: the entry is dropped from the registry and its handle closed.
// Returns whether the write succeeded.
func writeOrDrop(reg *Registry, e *Entry, data []byte) bool {
	if err := e.WriteText(data); err != nil {
		log.Printf("realtime: write to connection %s (identity %q) failed: %v", e.Key, e.Identity, err)
		reg.Drop(e.Key)
		return false
	}
	return true
}
