package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// fakeConn records frames written to it and can be switched to fail writes.
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	failWrites bool
	closes     int
}

func (c *fakeConn) WriteText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("broken pipe")
	}
	cp := append([]byte(nil), data...)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) failFromNow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWrites = true
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// lastFrame decodes the most recent frame into out.
func (c *fakeConn) lastFrame(out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return errors.New("no frames")
	}
	return json.Unmarshal(c.frames[len(c.frames)-1], out)
}

type readResult struct {
	data []byte
	err  error
}

// fakeReadConn scripts the read side for lifecycle tests.
type fakeReadConn struct {
	fakeConn
	reads chan readResult
}

func newFakeReadConn() *fakeReadConn {
	return &fakeReadConn{reads: make(chan readResult, 16)}
}

func (c *fakeReadConn) ReadMessage() ([]byte, error) {
	r, ok := <-c.reads
	if !ok {
		return nil, io.EOF
	}
	return r.data, r.err
}

func (c *fakeReadConn) pushFrame(data []byte) {
	c.reads <- readResult{data: data}
}

func (c *fakeReadConn) pushError(err error) {
	c.reads <- readResult{err: err}
}

// recordingListener captures membership events in order.
type recordingListener struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingListener) ConnectionAdded(identity string, first bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if first {
		l.events = append(l.events, "first:"+identity)
	} else {
		l.events = append(l.events, "added:"+identity)
	}
}

func (l *recordingListener) ConnectionRemoved(identity string, last bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last {
		l.events = append(l.events, "last:"+identity)
	} else {
		l.events = append(l.events, "removed:"+identity)
	}
}

func (l *recordingListener) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recordingStore captures persisted messages.
type recordingStore struct {
	mu   sync.Mutex
	msgs []InboundMessage
}

func (s *recordingStore) SaveMessage(msg InboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func (s *recordingStore) messages() []InboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]InboundMessage(nil), s.msgs...)
}

// recordingRecorder captures durable notification and last-seen writes.
type recordingRecorder struct {
	mu            sync.Mutex
	notifications map[string][]Notification
	lastSeen      map[string]time.Time
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{
		notifications: make(map[string][]Notification),
		lastSeen:      make(map[string]time.Time),
	}
}

func (r *recordingRecorder) RecordNotification(identity string, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[identity] = append(r.notifications[identity], n)
}

func (r *recordingRecorder) RecordLastSeen(identity string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeen[identity] = at
}

func (r *recordingRecorder) notificationCount(identity string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications[identity])
}

func (r *recordingRecorder) hasLastSeen(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lastSeen[identity]
	return ok
}
