package clock

import "time"

// Clock abstracts wall-clock reads and backoff sleeps so retry loops can be
// tested without real waiting.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type clock struct{}

func (c *clock) Now() time.Time {
	return time.Now()
}

func (c *clock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func New() Clock {
	return &clock{}
}

// Mock advances its internal time by the slept duration instead of waiting,
// and records every sleep it was asked to perform.
type Mock struct {
	now    time.Time
	Sleeps []time.Duration
}

func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

func (m *Mock) Now() time.Time {
	return m.now
}

func (m *Mock) Sleep(d time.Duration) {
	m.Sleeps = append(m.Sleeps, d)
	m.now = m.now.Add(d)
}

func (m *Mock) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}
