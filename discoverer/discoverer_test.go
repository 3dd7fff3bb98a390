package discoverer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aldrinbus/bus/broker"
	"github.com/aldrinbus/bus/client"
	"github.com/aldrinbus/bus/transport/inproc"
	"github.com/aldrinbus/bus/wire/ids"
)

func newTestBroker(t *testing.T) *broker.Broker {
	t.Helper()
	b := broker.NewBroker(broker.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	return b
}

func dialTestClient(t *testing.T, b *broker.Broker) client.Handle {
	t.Helper()
	server, clientEnd := inproc.NewPair(64)
	b.Connect(context.Background(), server)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, h, err := client.Dial(ctx, clientEnd, client.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestSingletonDiscoveryResolvesAfterAllServicesCreated(t *testing.T) {
	b := newTestBroker(t)
	watcherHandle := dialTestClient(t, b)
	ownerHandle := dialTestClient(t, b)
	ctx := context.Background()

	objUUID := ids.NewObjectUUID()
	s1 := ids.NewServiceUUID()
	s2 := ids.NewServiceUUID()

	d := New()
	d.Watch(Singleton, objUUID, []ids.ServiceUUID{s1, s2})
	require.NoError(t, d.Start(ctx, watcherHandle))
	defer d.Stop(ctx)

	require.NoError(t, watcherHandle.SyncBroker(ctx))

	obj, err := ownerHandle.CreateObject(ctx, objUUID)
	require.NoError(t, err)

	_, err = obj.CreateService(ctx, s1, 1)
	require.NoError(t, err)

	select {
	case ev := <-d.Events():
		t.Fatalf("discoverer resolved early with only one of two required services: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}

	_, err = obj.CreateService(ctx, s2, 1)
	require.NoError(t, err)

	select {
	case ev := <-d.Events():
		require.Equal(t, Singleton, ev.Key)
		require.True(t, ev.Created)
		require.Equal(t, objUUID, ev.Object.UUID)
		require.ElementsMatch(t, []ids.ServiceUUID{s1, s2}, ev.Services)
	case <-time.After(2 * time.Second):
		t.Fatal("discoverer never resolved the singleton target")
	}
}
