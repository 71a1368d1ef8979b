package session

import "github.com/abhisek/neurogym/internal/exercise"

// PlanCategory represents the reason an exercise was included in the plan.
type PlanCategory string

const (
	CategoryNew     PlanCategory = "new"
	CategoryReview  PlanCategory = "review"
	CategoryBooster PlanCategory = "booster"
)

// PlanSlot is a single exercise in a workout.
type PlanSlot struct {
	Exercise exercise.Descriptor
	Category PlanCategory

	// Accuracy is the historical accuracy, 0 for new exercises.
	Accuracy float64
}

// Plan is the ordered list of exercises for a workout.
type Plan struct {
	Slots []PlanSlot
}

// DefaultTotalSlots is the default number of exercises in a workout.
const DefaultTotalSlots = 4

// BoosterAccuracy is the historical accuracy below which an exercise gets a
// booster slot.
const BoosterAccuracy = 0.75
