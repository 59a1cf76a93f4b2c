package bill

// Choice is a single vote.
type Choice string

const (
	Yea     Choice = "yea"
	Nay     Choice = "nay"
	Abstain Choice = "abstain"
)

// Valid reports a known choice.
func (c Choice) Valid() bool {
	return c == Yea || c == Nay || c == Abstain
}

// Tally counts votes by choice.
type Tally struct {
	Yea     int `json:"yea"`
	Nay     int `json:"nay"`
	Abstain int `json:"abstain"`
}

// Count tallies a vote map. Unknown choices count as abstentions.
func Count(votes map[string]Choice) Tally {
	var t Tally
	for _, c := range votes {
		switch c {
		case Yea:
			t.Yea++
		case Nay:
			t.Nay++
		default:
			t.Abstain++
		}
	}
	return t
}

// Total is the number of ballots cast.
func (t Tally) Total() int {
	return t.Yea + t.Nay + t.Abstain
}

// Majority returns the yea count needed to pass a body of size seats.
// A body of unknown size falls back to a majority of ballots cast.
func Majority(size int, t Tally) int {
	if size <= 0 {
		size = t.Total()
	}
	return size/2 + 1
}

// Passes applies the body-majority rule: yea must reach a majority of the
// body and strictly beat nay. Ties fail.
func (t Tally) Passes(bodySize int) bool {
	if t.Total() == 0 {
		return false
	}
	return t.Yea >= Majority(bodySize, t) && t.Yea > t.Nay
}
