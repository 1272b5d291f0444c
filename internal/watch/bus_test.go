package watch

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus(BusOptions{})
	defer bus.Close()

	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, bus.Subscribers())

	ev := ChangeEvent{Path: "/tmp/x.md", Kind: KindModify}
	bus.Emit(TopicFileChanged, ev)

	for _, ch := range []<-chan Message{a, b} {
		msg := <-ch
		assert.Equal(t, TopicFileChanged, msg.Topic)
		assert.Equal(t, ev, msg.Event)
	}
	assert.Equal(t, int64(1), bus.Published())
	assert.Equal(t, int64(0), bus.Dropped())
}

func TestBusDropsForFullSubscriber(t *testing.T) {
	var mu sync.Mutex
	drops := 0
	bus := NewBus(BusOptions{
		SubscriberBuffer: 2,
		OnDrop: func() {
			mu.Lock()
			drops++
			mu.Unlock()
		},
	})
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		bus.Emit(TopicFileChanged, ChangeEvent{Path: "p", Kind: KindCreate})
	}

	assert.Len(t, ch, 2)
	assert.Equal(t, int64(5), bus.Published())
	assert.Equal(t, int64(3), bus.Dropped())
	mu.Lock()
	assert.Equal(t, 3, drops)
	mu.Unlock()
}

func TestBusCancel(t *testing.T) {
	bus := NewBus(BusOptions{})
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
	assert.Equal(t, 0, bus.Subscribers())

	bus.Emit(TopicFileChanged, ChangeEvent{Path: "p", Kind: KindCreate})
	assert.Equal(t, int64(0), bus.Dropped())
}

func TestBusClose(t *testing.T) {
	bus := NewBus(BusOptions{})
	ch, cancel := bus.Subscribe()

	bus.Close()
	bus.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	bus.Emit(TopicFileChanged, ChangeEvent{Path: "p", Kind: KindCreate})
	assert.Equal(t, int64(0), bus.Published())

	late, _ := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing to a closed bus returns a closed channel")
}

func TestMessageJSON(t *testing.T) {
	data, err := json.Marshal(Message{
		Topic: TopicFileChanged,
		Event: ChangeEvent{Path: "/a/b.md", Kind: KindRemove},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"file-changed","payload":{"path":"/a/b.md","kind":"remove"}}`, string(data))
}
