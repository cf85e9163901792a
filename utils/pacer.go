package utils

import "time"

// Pacer enforces a minimum interval between consecutive navigations.
// The crawler is strictly sequential, so no locking is needed.
type Pacer struct {
	minInterval time.Duration
	last        time.Time
	sleep       func(time.Duration)
}

// NewPacer creates a Pacer with the given minimum gap in milliseconds.
// A non-positive value disables pacing.
func NewPacer(rateLimitMs int) *Pacer {
	return &Pacer{
		minInterval: time.Duration(rateLimitMs) * time.Millisecond,
		sleep:       time.Sleep,
	}
}

// Wait sleeps until the minimum interval since the previous call has passed.
func (p *Pacer) Wait() {
	if p == nil || p.minInterval <= 0 {
		return
	}
	if !p.last.IsZero() {
		if elapsed := time.Since(p.last); elapsed < p.minInterval {
			p.sleep(p.minInterval - elapsed)
		}
	}
	p.last = time.Now()
}
