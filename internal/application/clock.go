package application

import "time"

// Clock abstracts time.Now so result timestamps are controllable in tests.
// The timestamp doubles as the result identity key, which makes this more
// than a convenience.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StepClock hands out strictly increasing instants, one per call. Test use.
type StepClock struct {
	Base time.Time
	Step time.Duration
	n    int
}

func (c *StepClock) Now() time.Time {
	t := c.Base.Add(time.Duration(c.n) * c.Step)
	c.n++
	return t
}
