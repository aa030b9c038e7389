// Package timing provides the consolidated per-entity timekeeping used by the
// player and guard state machines: one timer tied to the current state plus a
// small set of named cooldowns that survive state transitions.
package timing

// StateTimer accumulates elapsed time since its owner's last state transition.
//
// Invariant: Elapsed() never decreases except through Reset.
type StateTimer struct {
	elapsed float64
}

// Advance adds dt seconds to the timer.
//
// Precondition: dt >= 0. Panics with "timing: Advance called with dt < 0"
// if dt is negative.
func (t *StateTimer) Advance(dt float64) {
	if dt < 0 {
		panic("timing: Advance called with dt < 0")
	}
	t.elapsed += dt
}

// Reset zeroes the timer. Called on every state transition.
//
// Postcondition: Elapsed() == 0.
func (t *StateTimer) Reset() {
	t.elapsed = 0
}

// Elapsed returns seconds accumulated since the last Reset.
func (t *StateTimer) Elapsed() float64 {
	return t.elapsed
}

// Reached reports whether at least d seconds have accumulated.
func (t *StateTimer) Reached(d float64) bool {
	return t.elapsed >= d
}

// CooldownSet tracks named countdowns keyed by purpose. Unlike the state
// timer, cooldowns persist across state transitions.
type CooldownSet struct {
	remaining map[string]float64
}

// NewCooldownSet returns an empty cooldown set.
func NewCooldownSet() *CooldownSet {
	return &CooldownSet{remaining: make(map[string]float64)}
}

// Set starts or restarts the named cooldown at d seconds.
//
// Precondition: d >= 0.
// Postcondition: Ready(name) == (d == 0).
func (c *CooldownSet) Set(name string, d float64) {
	if d < 0 {
		panic("timing: Set called with d < 0")
	}
	if d == 0 {
		delete(c.remaining, name)
		return
	}
	c.remaining[name] = d
}

// Advance counts every cooldown down by dt seconds, dropping those that
// expire.
//
// Precondition: dt >= 0. Panics with "timing: Advance called with dt < 0"
// if dt is negative.
func (c *CooldownSet) Advance(dt float64) {
	if dt < 0 {
		panic("timing: Advance called with dt < 0")
	}
	for name, rem := range c.remaining {
		rem -= dt
		if rem <= 0 {
			delete(c.remaining, name)
			continue
		}
		c.remaining[name] = rem
	}
}

// Ready reports whether the named cooldown has expired or was never set.
func (c *CooldownSet) Ready(name string) bool {
	_, active := c.remaining[name]
	return !active
}

// Remaining returns seconds left on the named cooldown, or 0 when expired.
func (c *CooldownSet) Remaining(name string) float64 {
	return c.remaining[name]
}

// Clear drops the named cooldown immediately.
//
// Postcondition: Ready(name) == true.
func (c *CooldownSet) Clear(name string) {
	delete(c.remaining, name)
}
