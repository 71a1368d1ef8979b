package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int       // max results (0 = unlimited)
	After    int64     // sequence > After
	Before   int64     // sequence < Before
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
	Exercise string    // exact exercise ID ("" = all)
}

// Session actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// SessionEventData captures a session lifecycle event. Result fields are
// filled on ActionEnd only.
type SessionEventData struct {
	SessionID string
	Exercise  string
	Action    string

	PlannedTrials  int
	TotalTrials    int
	CorrectTrials  int
	TimedOutTrials int
	Accuracy       float64
	AvgResponseMs  float64

	InitialDifficulty   int
	FinalDifficulty     int
	MaxDifficulty       int
	MinDifficulty       int
	HardestDifficulty   int
	ThresholdDifficulty int

	Score      int
	Completed  bool
	DurationMs int64
}

// SessionRecord is a stored session event.
type SessionRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// TrialEventData captures one played trial.
type TrialEventData struct {
	SessionID       string
	Exercise        string
	TrialIndex      int
	Difficulty      int
	Level           int
	Correct         bool
	Credit          float64
	ResponseTimeMs  int
	TimedOut        bool
	DifficultyAfter int
	Adjusted        bool
	Dimensions      map[string]bool
}

// TrialRecord is a stored trial event.
type TrialRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	TrialEventData
}

// ExerciseStat aggregates the finished sessions of one exercise.
type ExerciseStat struct {
	Exercise     string
	Sessions     int
	Trials       int
	Correct      int
	BestScore    int
	MaxHardest   int
	MinHardest   int
	LastSequence int64
}

// Accuracy returns Correct / Trials, or 0 without trials.
func (s ExerciseStat) Accuracy() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Trials)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendTrialEvent(ctx context.Context, data TrialEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessions returns finished sessions, newest first.
	QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// SessionTrials returns the trials of one session in play order.
	SessionTrials(ctx context.Context, sessionID string) ([]TrialRecord, error)

	// LastFinalDifficulty returns the final difficulty of the most recent
	// finished session of exercise. ok is false if there is none.
	LastFinalDifficulty(ctx context.Context, exercise string) (difficulty int, ok bool, err error)

	// ExerciseStats aggregates finished sessions per exercise.
	ExerciseStats(ctx context.Context) ([]ExerciseStat, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns nil if no event has the given ID.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// SnapshotData captures the player's adaptive levels at a point in time.
type SnapshotData struct {
	Version int            `json:"version"`
	Levels  map[string]int `json:"levels"`
}

// Snapshot represents a point-in-time capture of player state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages player state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. Sequence and Timestamp are assigned when
	// zero.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
