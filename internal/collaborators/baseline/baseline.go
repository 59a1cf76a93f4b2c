// Package baseline provides simple, replaceable implementations of every
// collaborator so the engine can run headless.
package baseline

import (
	"github.com/MRamiBalles/Legislatura/internal/collaborators"
	"github.com/MRamiBalles/Legislatura/internal/random"
)

// New wires every baseline collaborator to one random source.
func New(rng random.Source) collaborators.Set {
	return collaborators.Set{
		Stats:      NewStats(rng),
		Budget:     NewBudget(rng),
		Events:     MustEvents(rng),
		News:       News{},
		Coalitions: Coalitions{},
		Author:     NewAuthor(rng),
	}
}
