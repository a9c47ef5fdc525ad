package gateway

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomariano/futurezxyback/internal/model"
)

type fakeSub struct {
	id     string
	mu     sync.Mutex
	got    [][]byte
	failOn bool
	closed bool
}

func newFakeSub(id string) *fakeSub { return &fakeSub{id: id} }

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn {
		return errors.New("broken pipe")
	}
	f.got = append(f.got, payload)
	return nil
}

func (f *fakeSub) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSub) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func env(symbol string, tf model.Timeframe, payload string) model.Envelope {
	return model.Envelope{
		Key:     model.SeriesKey{Symbol: symbol, Timeframe: tf},
		Payload: []byte(payload),
	}
}

func TestHubBroadcastsToAll(t *testing.T) {
	hub := NewHub()
	subs := make([]*fakeSub, 3)
	for i := range subs {
		subs[i] = newFakeSub(fmt.Sprintf("sub-%d", i))
		hub.Register(subs[i])
	}
	require.Equal(t, 3, hub.Count())

	hub.Publish(env("INJ_USDT", model.TF1m, `{"n":1}`))
	for _, s := range subs {
		assert.Equal(t, 1, s.received())
	}
}

func TestHubEvictsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	var failures []string
	hub.OnSendFailure = func(id string) { failures = append(failures, id) }

	good1 := newFakeSub("good-1")
	bad := newFakeSub("bad")
	bad.failOn = true
	good2 := newFakeSub("good-2")
	hub.Register(good1)
	hub.Register(bad)
	hub.Register(good2)

	hub.Publish(env("INJ_USDT", model.TF1m, `{"n":1}`))

	assert.Equal(t, 2, hub.Count())
	assert.True(t, bad.closed)
	assert.Equal(t, []string{"bad"}, failures)
	assert.Equal(t, 1, good1.received())
	assert.Equal(t, 1, good2.received())

	// The evicted subscriber stays gone on the next publish.
	hub.Publish(env("INJ_USDT", model.TF1m, `{"n":2}`))
	assert.Equal(t, 2, good1.received())
}

func TestHubLatestFiltersBySymbol(t *testing.T) {
	hub := NewHub()
	hub.Publish(env("INJ_USDT", model.TF1m, "a"))
	hub.Publish(env("INJ_USDT", model.TF5m, "b"))
	hub.Publish(env("BTC_USDT", model.TF1m, "c"))
	// A newer payload replaces the stored one for its series.
	hub.Publish(env("BTC_USDT", model.TF1m, "c2"))

	assert.Len(t, hub.LatestAll(), 3)
	inj := hub.Latest([]string{"INJ_USDT"})
	assert.Len(t, inj, 2)
	btc := hub.Latest([]string{"BTC_USDT"})
	require.Len(t, btc, 1)
	assert.Equal(t, "c2", string(btc[0]))
	assert.Len(t, hub.Latest(nil), 3)
}

func TestHubCloseAll(t *testing.T) {
	hub := NewHub()
	s1 := newFakeSub("s1")
	s2 := newFakeSub("s2")
	hub.Register(s1)
	hub.Register(s2)

	hub.CloseAll()
	assert.Equal(t, 0, hub.Count())
	assert.True(t, s1.closed)
	assert.True(t, s2.closed)
}

func TestHubUnregisterTwice(t *testing.T) {
	hub := NewHub()
	counts := []int{}
	hub.OnSubscriberCount = func(n int) { counts = append(counts, n) }

	s := newFakeSub("s")
	hub.Register(s)
	hub.Unregister(s)
	hub.Unregister(s)

	// The second unregister is a no-op and fires no callback.
	assert.Equal(t, []int{1, 0}, counts)
}
