package bus

import (
	"context"
	"testing"
	"time"

	"github.com/yomariano/futurezxyback/internal/model"
)

var busKey = model.SeriesKey{Symbol: "INJ_USDT", Timeframe: model.TF1m}

func TestFanOutDeliversToAllSubscribers(t *testing.T) {
	f := New(8)
	a := f.Subscribe()
	b := f.Subscribe()

	in := make(chan model.Envelope, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx, in)

	in <- model.Envelope{Key: busKey, Payload: []byte("x")}

	for name, ch := range map[string]<-chan model.Envelope{"a": a, "b": b} {
		select {
		case env := <-ch:
			if string(env.Payload) != "x" {
				t.Fatalf("%s: payload = %q", name, env.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: no delivery", name)
		}
	}
}

func TestFanOutDropsOnFullSubscriber(t *testing.T) {
	f := New(1)
	slow := f.Subscribe()
	fast := f.Subscribe()

	dropped := make(chan int, 4)
	f.OnDrop = func(i int) { dropped <- i }

	in := make(chan model.Envelope)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx, in)

	// Two envelopes: the second overflows the slow subscriber's buffer.
	in <- model.Envelope{Key: busKey, Payload: []byte("1")}
	in <- model.Envelope{Key: busKey, Payload: []byte("2")}

	select {
	case i := <-dropped:
		if i != 0 {
			t.Fatalf("dropped subscriber index = %d", i)
		}
	case <-time.After(time.Second):
		t.Fatal("no drop recorded")
	}

	// The fast subscriber got its first copy regardless; drain it to prove
	// the drop was isolated.
	select {
	case env := <-fast:
		if string(env.Payload) != "1" {
			t.Fatalf("fast payload = %q", env.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("fast subscriber starved")
	}
	<-slow
}

func TestFanOutClosesOutputsOnInputClose(t *testing.T) {
	f := New(1)
	out := f.Subscribe()

	in := make(chan model.Envelope)
	done := make(chan struct{})
	go func() {
		f.Run(context.Background(), in)
		close(done)
	}()

	close(in)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return on input close")
	}
	if _, ok := <-out; ok {
		t.Fatal("subscriber channel not closed")
	}
}
