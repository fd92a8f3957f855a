package metrics

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorPollsOnStartAndInterval(t *testing.T) {
	var calls int32
	c := NewCollector(func() (Stats, error) {
		atomic.AddInt32(&calls, 1)
		return Stats{Records: 7}, nil
	}, 10*time.Millisecond)

	c.Start()
	defer c.Stop()

	time.Sleep(35 * time.Millisecond)

	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected at least 2 polls, got %d", calls)
	}
	if got := testutil.ToFloat64(AssetsTotal); got != 7 {
		t.Errorf("AssetsTotal = %v, want 7", got)
	}
}

func TestCollectorSurvivesPollError(t *testing.T) {
	c := NewCollector(func() (Stats, error) {
		return Stats{}, errors.New("boom")
	}, 10*time.Millisecond)

	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Stop()
}

func TestCollectorDefaultsInterval(t *testing.T) {
	c := NewCollector(func() (Stats, error) { return Stats{}, nil }, 0)
	if c.interval != 15*time.Second {
		t.Errorf("interval = %v, want 15s", c.interval)
	}
}
