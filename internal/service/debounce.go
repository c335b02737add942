package service

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Debouncer suppresses repeat recognitions of a plate inside the window.
// Only accepted recognitions refresh the window, so a vehicle sitting in
// frame is suppressed relative to its last accepted sighting, not its last
// appearance. State is process-scoped and not persisted; losing it across
// restarts costs at most one redundant detection.
type Debouncer struct {
	window time.Duration
	seen   *cache.Cache
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		return &Debouncer{}
	}
	return &Debouncer{
		window: window,
		seen:   cache.New(window, 2*window),
	}
}

// Accept reports whether the plate may proceed and, if so, records the
// sighting.
func (d *Debouncer) Accept(plate string) bool {
	if d.seen == nil {
		return true
	}
	if _, found := d.seen.Get(plate); found {
		return false
	}
	d.seen.SetDefault(plate, time.Now())
	return true
}

// Reset clears all debounce state. Test hook.
func (d *Debouncer) Reset() {
	if d.seen != nil {
		d.seen.Flush()
	}
}
