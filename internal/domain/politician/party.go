package politician

// Party is a political party. Popularity is tracked per jurisdiction.
type Party struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Ideology map[string]float64 `json:"ideology,omitempty"` // axis -> stance in [-1, 1]
}
