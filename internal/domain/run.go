package domain

import (
	"math"
	"time"
)

// RunState is the coarse state of the countdown.
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
	RunStatePaused  RunState = "paused"
)

// Label returns a human-readable label.
func (s RunState) Label() string {
	switch s {
	case RunStateIdle:
		return "Idle"
	case RunStateRunning:
		return "Running"
	case RunStatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// RunSnapshot is a copy of the countdown's run state at one instant.
// IsPaused is only ever true while IsRunning is true. Seq identifies the run
// the snapshot belongs to; it changes on every start and is zero while idle.
type RunSnapshot struct {
	IsRunning   bool
	IsPaused    bool
	PausesCount int
	Elapsed     time.Duration
	StartedAt   time.Time
	Seq         uint64
}

// State maps the flags onto a RunState.
func (s RunSnapshot) State() RunState {
	switch {
	case !s.IsRunning:
		return RunStateIdle
	case s.IsPaused:
		return RunStatePaused
	default:
		return RunStateRunning
	}
}

// ElapsedTimeInSeconds returns the accumulated running time in seconds.
func (s RunSnapshot) ElapsedTimeInSeconds() float64 {
	return s.Elapsed.Seconds()
}

// Display holds the values shown for a countdown against a total duration.
type Display struct {
	TimeLeft          time.Duration
	MinutesLeft       int
	SecondsLeft       int
	ProgressInPercent float64
}

// Display computes the remaining time and progress against total. Values are
// computed fresh on every call. TimeLeft goes negative on overrun and the
// percentage is not clamped; a non-positive total reports zero progress.
func (s RunSnapshot) Display(total time.Duration) Display {
	left := total - s.Elapsed
	leftSeconds := left.Seconds()

	var percent float64
	if total > 0 {
		percent = s.Elapsed.Seconds() / total.Seconds() * 100
	}

	return Display{
		TimeLeft:          left,
		MinutesLeft:       int(math.Floor(leftSeconds / 60)),
		SecondsLeft:       int(math.Floor(math.Mod(leftSeconds, 60))),
		ProgressInPercent: percent,
	}
}

// Overrun reports whether the countdown has passed zero.
func (d Display) Overrun() bool {
	return d.TimeLeft < 0
}

// RunRecord is a finished (stopped) run of a timebox.
type RunRecord struct {
	ID          string
	TimeboxID   string
	Title       string
	Planned     time.Duration
	Elapsed     time.Duration
	PausesCount int
	StartedAt   time.Time
	StoppedAt   time.Time
	GitBranch   string
	GitCommit   string
}

// NewRunRecord builds a history entry from a timebox and its final snapshot.
func NewRunRecord(tb Timebox, snap RunSnapshot, stoppedAt time.Time) *RunRecord {
	startedAt := snap.StartedAt
	if startedAt.IsZero() {
		startedAt = stoppedAt.Add(-snap.Elapsed)
	}
	return &RunRecord{
		ID:          NewID(),
		TimeboxID:   tb.ID,
		Title:       tb.Title,
		Planned:     tb.Duration,
		Elapsed:     snap.Elapsed,
		PausesCount: snap.PausesCount,
		StartedAt:   startedAt,
		StoppedAt:   stoppedAt,
	}
}

// Overrun reports whether the run went past its planned duration.
func (r *RunRecord) Overrun() bool {
	return r.Planned > 0 && r.Elapsed > r.Planned
}

// SetGitContext stores git information for the run.
func (r *RunRecord) SetGitContext(branch, commit string) {
	r.GitBranch = branch
	r.GitCommit = commit
}

// DailyStats aggregates run statistics for a day.
type DailyStats struct {
	Date         time.Time
	Runs         int
	TotalFocused time.Duration
	Pauses       int
	Overruns     int
}
