package realtime

// MessageStore durably records routed chat messages. It is invoked on its own
// goroutine, fire-and-forget: durability is never a precondition for live
// delivery, and a slow store cannot stall the routing path.
type MessageStore interface {
	SaveMessage(msg InboundMessage)
}

// Router decides and executes delivery for one decoded inbound message:
// direct when a receiver is named, broadcast otherwise.
type Router struct {
	registry *Registry
	store    MessageStore
	echo     bool
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMessageStore attaches a durable message store hook.
func WithMessageStore(store MessageStore) RouterOption {
	return func(rt *Router) { rt.store = store }
}

// WithBroadcastEcho controls whether a broadcast is echoed back to the
// sending connection. Disabled unless requested.
func WithBroadcastEcho(echo bool) RouterOption {
	return func(rt *Router) { rt.echo = echo }
}

// NewRouter creates a router over registry.
func NewRouter(registry *Registry, opts ...RouterOption) *Router {
	rt := &Router{registry: registry}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Route dispatches msg arriving on the connection entry from. The sender
// identity is stamped from the registered connection, not trusted from the
// payload; frames from an anonymous connection carry an empty sender. An
// offline direct target means the live delivery is silently dropped; the
// durable record (if a store is attached) is written either way.
func (rt *Router) Route(from *Entry, msg InboundMessage) {
	msg.Sender = from.Identity
	if rt.store != nil {
		stored := msg
		go rt.store.SaveMessage(stored)
	}

	data := EncodeMessage(msg)
	if msg.Broadcast() {
		rt.broadcast(from, data)
		return
	}
	for _, e := range rt.registry.Lookup(msg.Receiver) {
		writeOrDrop(rt.registry, e, data)
	}
}

// broadcast writes data to every live connection. A failed recipient is
// dropped without affecting delivery to the rest.
func (rt *Router) broadcast(from *Entry, data []byte) {
	for _, e := range rt.registry.AllEntries() {
		if !rt.echo && from != nil && e.Key == from.Key {
			continue
		}
		writeOrDrop(rt.registry, e, data)
	}
}
