package world

// Clock is a monotonic simulation clock advanced by fixed steps.
type Clock struct {
	now float64
}

// Now returns the elapsed simulation time in seconds.
func (c *Clock) Now() float64 {
	return c.now
}

// Advance moves the clock forward. Negative steps are ignored.
func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}
