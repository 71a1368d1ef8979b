package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/store"
)

// Planner builds a workout from the player's history.
type Planner interface {
	BuildPlan(ctx context.Context) (*Plan, error)
}

// DefaultPlanner fills a workout with exercises never played, then the least
// recently played ones, and reserves one slot for the weakest exercise.
type DefaultPlanner struct {
	EventRepo  store.EventRepo
	Exercises  []exercise.Descriptor
	TotalSlots int
}

// NewPlanner creates a DefaultPlanner over exercises.
func NewPlanner(eventRepo store.EventRepo, exercises []exercise.Descriptor) *DefaultPlanner {
	return &DefaultPlanner{
		EventRepo:  eventRepo,
		Exercises:  exercises,
		TotalSlots: DefaultTotalSlots,
	}
}

// BuildPlan creates a workout plan.
func (p *DefaultPlanner) BuildPlan(ctx context.Context) (*Plan, error) {
	stats, err := p.EventRepo.ExerciseStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}
	byID := make(map[string]store.ExerciseStat, len(stats))
	for _, s := range stats {
		byID[s.Exercise] = s
	}

	total := p.TotalSlots
	if total <= 0 {
		total = DefaultTotalSlots
	}

	var fresh, played []exercise.Descriptor
	for _, d := range p.Exercises {
		if _, ok := byID[d.ID]; ok {
			played = append(played, d)
		} else {
			fresh = append(fresh, d)
		}
	}

	booster, hasBooster := selectBooster(played, byID)
	if hasBooster {
		total--
	}

	var slots []PlanSlot
	for _, d := range fresh {
		if len(slots) == total {
			break
		}
		slots = append(slots, PlanSlot{Exercise: d, Category: CategoryNew})
	}

	for _, d := range selectReview(played, byID) {
		if len(slots) == total {
			break
		}
		if hasBooster && d.ID == booster.ID {
			continue
		}
		slots = append(slots, PlanSlot{
			Exercise: d,
			Category: CategoryReview,
			Accuracy: byID[d.ID].Accuracy(),
		})
	}

	if hasBooster {
		slots = append(slots, PlanSlot{
			Exercise: booster,
			Category: CategoryBooster,
			Accuracy: byID[booster.ID].Accuracy(),
		})
	}

	return &Plan{Slots: slots}, nil
}

// selectReview orders played exercises least recently played first.
func selectReview(played []exercise.Descriptor, stats map[string]store.ExerciseStat) []exercise.Descriptor {
	out := append([]exercise.Descriptor(nil), played...)
	sort.SliceStable(out, func(i, j int) bool {
		return stats[out[i].ID].LastSequence < stats[out[j].ID].LastSequence
	})
	return out
}

// selectBooster picks the played exercise with the lowest accuracy below
// BoosterAccuracy.
func selectBooster(played []exercise.Descriptor, stats map[string]store.ExerciseStat) (exercise.Descriptor, bool) {
	var (
		best  exercise.Descriptor
		found bool
	)
	for _, d := range played {
		acc := stats[d.ID].Accuracy()
		if acc >= BoosterAccuracy {
			continue
		}
		if !found || acc < stats[best.ID].Accuracy() ||
			(acc == stats[best.ID].Accuracy() && d.ID < best.ID) {
			best, found = d, true
		}
	}
	return best, found
}
