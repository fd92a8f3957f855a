package metrics

import "time"

// Stats is the point-in-time snapshot a Collector polls for. Treasury's own
// Stats result satisfies this shape; Collector takes a callback instead of
// importing pkg/treasury directly to avoid a dependency cycle (treasury
// already imports metrics to bump counters inline on Store/Fetch).
type Stats struct {
	Records int
	Sources int
}

// Collector periodically reconciles the gauges that Store and Fetch only
// ever adjust incrementally against the index's actual state, so a treasury
// opened against a pre-existing root reports correct counts instead of
// starting from zero.
type Collector struct {
	poll     func() (Stats, error)
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector returns a Collector that calls poll on the given interval. A
// zero interval defaults to 15 seconds.
func NewCollector(poll func() (Stats, error), interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		poll:     poll,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics in the background.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	stats, err := c.poll()
	if err != nil {
		return
	}
	AssetsTotal.Set(float64(stats.Records))
}
