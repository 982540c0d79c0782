package model

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Test describes a single run: how many ordinary worker slots to schedule
// over, and the seed behind every randomized scheduling decision. The Rand
// is owned by the coordinating goroutine and must not be shared.
type Test struct {
	ID        string
	Name      string
	Workers   int
	Seed      int64
	Rand      *rand.Rand
	CreatedAt time.Time
}

// NewTest creates a Test with a fresh run id and a seeded Rand.
func NewTest(name string, workers int, seed int64) *Test {
	return &Test{
		ID:        "run_" + uuid.New().String()[:8],
		Name:      name,
		Workers:   workers,
		Seed:      seed,
		Rand:      rand.New(rand.NewSource(seed)),
		CreatedAt: time.Now().UTC(),
	}
}
