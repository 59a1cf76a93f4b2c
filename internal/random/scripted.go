package random

// Scripted replays a fixed list of floats, cycling when exhausted.
// Intn maps the next float onto [0, n).
type Scripted struct {
	values []float64
	next   int
}

// NewScripted returns a source that yields values in order.
// With no values it always yields 0.
func NewScripted(values ...float64) *Scripted {
	return &Scripted{values: values}
}

func (s *Scripted) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v >= 1 {
		v = 0.999999
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *Scripted) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}

// Fixed always returns the same float.
type Fixed float64

func (f Fixed) Float64() float64 {
	v := float64(f)
	if v >= 1 {
		return 0.999999
	}
	if v < 0 {
		return 0
	}
	return v
}

func (f Fixed) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(f.Float64() * float64(n))
}
