package upstream

import "time"

// Clock abstracts wall-clock reads so token expiry can be tested with a fake
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock backed by time.Now
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock { return systemClock{} }
