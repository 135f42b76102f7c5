package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}

	entry := reg.Register("emp1", conn)
	require.Equal(t, "emp1", entry.Identity)
	require.False(t, entry.Anonymous())

	found := reg.Lookup("emp1")
	require.Len(t, found, 1)
	require.Equal(t, entry.Key, found[0].Key)

	require.NoError(t, found[0].WriteText([]byte("x")))
	require.Equal(t, 1, conn.frameCount())

	reg.Unregister(entry.Key)
	require.Nil(t, reg.Lookup("emp1"))
	require.Zero(t, reg.ActiveCount("emp1"))
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	entry := reg.Register("emp1", &fakeConn{})

	reg.Unregister(entry.Key)
	reg.Unregister(entry.Key)
	reg.Unregister(uuid.New()) // never registered

	require.Nil(t, reg.Lookup("emp1"))
	require.Zero(t, reg.Len())
}

func TestRegistry_MultipleConnectionsPerIdentity(t *testing.T) {
	reg := NewRegistry()
	e1 := reg.Register("emp1", &fakeConn{})
	e2 := reg.Register("emp1", &fakeConn{})

	require.Equal(t, 2, reg.ActiveCount("emp1"))
	require.Len(t, reg.Lookup("emp1"), 2)

	reg.Unregister(e1.Key)
	require.Equal(t, 1, reg.ActiveCount("emp1"))
	found := reg.Lookup("emp1")
	require.Len(t, found, 1)
	require.Equal(t, e2.Key, found[0].Key)
}

func TestRegistry_ListenerFirstAndLast(t *testing.T) {
	reg := NewRegistry()
	listener := &recordingListener{}
	reg.AddListener(listener)

	e1 := reg.Register("emp1", &fakeConn{})
	e2 := reg.Register("emp1", &fakeConn{})
	reg.Unregister(e1.Key)
	reg.Unregister(e2.Key)

	require.Equal(t, []string{"first:emp1", "added:emp1", "removed:emp1", "last:emp1"}, listener.snapshot())
}

func TestRegistry_AnonymousEntries(t *testing.T) {
	reg := NewRegistry()
	listener := &recordingListener{}
	reg.AddListener(listener)

	entry := reg.Register("", &fakeConn{})
	require.True(t, entry.Anonymous())
	require.Equal(t, 1, reg.Len())
	require.Len(t, reg.AllEntries(), 1)
	require.Nil(t, reg.Lookup(""))
	require.Empty(t, listener.snapshot())

	reg.Unregister(entry.Key)
	require.Zero(t, reg.Len())
	require.Empty(t, listener.snapshot())
}

func TestRegistry_SnapshotDoesNotAliasLiveState(t *testing.T) {
	reg := NewRegistry()
	reg.Register("emp1", &fakeConn{})
	reg.Register("emp2", &fakeConn{})

	snapshot := reg.AllEntries()
	require.Len(t, snapshot, 2)

	for _, e := range snapshot {
		reg.Unregister(e.Key)
	}
	// snapshot still holds both entries even though the registry is empty
	require.Len(t, snapshot, 2)
	require.Zero(t, reg.Len())
}

func TestRegistry_DropClosesHandleOnce(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}
	entry := reg.Register("emp1", conn)

	reg.Drop(entry.Key)
	require.Zero(t, reg.ActiveCount("emp1"))
	require.Equal(t, 1, conn.closeCount())

	reg.Drop(entry.Key)
	require.Equal(t, 1, conn.closeCount())
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	reg := NewRegistry()
	identities := []string{"emp1", "emp2", "emp3", "emp4"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		identity := identities[i%len(identities)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				entry := reg.Register(identity, &fakeConn{})
				_ = reg.Lookup(identity)
				_ = reg.AllEntries()
				_ = reg.ActiveCount(identity)
				reg.Unregister(entry.Key)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, reg.Len())
	for _, identity := range identities {
		require.Zero(t, reg.ActiveCount(identity))
	}
}
