package realtime

import (
	"log"
)

// ReadConn is the full duplex handle owned by a connection's read loop.
type ReadConn interface {
	Conn
	// ReadMessage blocks until the next text frame arrives. Any error
	// (close frame, abrupt disconnect, expired read deadline) is terminal
	// for the read loop.
	ReadMessage() ([]byte, error)
}

// Lifecycle owns the full lifetime of accepted connections: registration,
// the read loop, and guaranteed cleanup.
type Lifecycle struct {
	registry *Registry
	router   *Router
}

// NewLifecycle creates a lifecycle handler over registry and router.
func NewLifecycle(registry *Registry, router *Router) *Lifecycle {
	return &Lifecycle{registry: registry, router: router}
}

// Serve registers conn under identity (empty for an anonymous broadcast-only
// slot) and runs its read loop, blocking for the life of the connection.
// Registration happens before the first frame is read, so the connection is a
// valid delivery target for concurrent routers immediately. Cleanup
// (unregistration, then handle closure) runs on every exit path, including a
// panic from downstream handling; a failed connection never takes the process
// down with it.
func (h *Lifecycle) Serve(identity string, conn ReadConn) {
	entry := h.registry.Register(identity, conn)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("realtime: connection %s: recovered: %v", entry.Key, rec)
		}
		h.registry.Unregister(entry.Key)
		entry.close()
	}()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			// Normal close and abrupt disconnect land here alike; cleanup
			// does not distinguish them.
			return
		}
		msg, err := DecodeMessage(data)
		if err != nil {
			// One malformed frame does not end the session.
			log.Printf("realtime: connection %s: %v", entry.Key, err)
			continue
		}
		h.router.Route(entry, msg)
	}
}
