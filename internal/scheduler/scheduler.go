// Package scheduler runs queued repair work once per simulated day.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/queue"
	"github.com/OCAP2/armory/pkg/core"
)

// Task is one unit of repair work on a mount.
type Task struct {
	Unit    uuid.UUID
	Mount   int
	Salvage bool
}

// Outcome classifies what a day did to a task.
type Outcome int

const (
	// Done means the slot needs no further work; the task was dropped.
	Done Outcome = iota
	// Progressed means work happened but more remains.
	Progressed
	// Blocked means CheckFixable refused the work.
	Blocked
	// Waiting means no replacement part was found.
	Waiting
	// Failed means the task was dropped because of an error.
	Failed
)

// String returns the lower-case outcome name.
func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Progressed:
		return "progressed"
	case Blocked:
		return "blocked"
	case Waiting:
		return "waiting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports a task after a day.
type Result struct {
	Task    Task
	Outcome Outcome
	Reason  parts.Reason
	Minutes int
	Err     error
}

// Rosters resolves a unit to its part roster.
type Rosters interface {
	Roster(id uuid.UUID) (*parts.Roster, bool)
}

// Scheduler owns the repair queue and the per-day check log.
type Scheduler struct {
	queue       *queue.Queue[Task]
	rosters     Rosters
	checks      *parts.CheckLog
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxAttempts caps the Fix calls per task per day.
func WithMaxAttempts(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a scheduler starting at day.
func New(rosters Rosters, day time.Time, opts ...Option) *Scheduler {
	s := &Scheduler{
		queue:       queue.New[Task](),
		rosters:     rosters,
		checks:      parts.NewCheckLog(day),
		maxAttempts: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue adds a task unless the same work is already queued. Salvage tasks
// flag the part for removal immediately so costs reflect it.
func (s *Scheduler) Enqueue(t Task) bool {
	if s.queue.Contains(func(q Task) bool { return q.Unit == t.Unit && q.Mount == t.Mount }) {
		return false
	}
	if t.Salvage {
		if r, ok := s.rosters.Roster(t.Unit); ok {
			if err := r.SetSalvaging(t.Mount, true); err != nil {
				s.logger.Warn("Cannot salvage mount", "unit", t.Unit.String(), "mount", t.Mount, "error", err)
				return false
			}
		}
	}
	s.queue.Push(t)
	return true
}

// Cancel drops queued work on a mount.
func (s *Scheduler) Cancel(unit uuid.UUID, mount int) bool {
	n := s.queue.RemoveFunc(func(q Task) bool { return q.Unit == unit && q.Mount == mount })
	if r, ok := s.rosters.Roster(unit); ok && n > 0 {
		_ = r.SetSalvaging(mount, false)
	}
	return n > 0
}

// EnqueueRoster queues every slot of a roster that needs work.
func (s *Scheduler) EnqueueRoster(r *parts.Roster) int {
	n := 0
	for _, idx := range r.Indexes() {
		if r.NeedsFixing(idx) && s.Enqueue(Task{Unit: r.UnitID(), Mount: idx}) {
			n++
		}
	}
	return n
}

// Pending returns the queued tasks.
func (s *Scheduler) Pending() []Task { return s.queue.Items() }

// Day returns the current day.
func (s *Scheduler) Day() time.Time { return s.checks.Day() }

// Checks returns the replacement-search log shared with manual repairs.
func (s *Scheduler) Checks() *parts.CheckLog { return s.checks }

// RunDay advances to day and works each queued task once. Unfinished tasks
// go back on the queue in their original order.
func (s *Scheduler) RunDay(ctx context.Context, day time.Time) []Result {
	s.checks.Advance(day)
	tasks := s.queue.Drain()
	results := make([]Result, 0, len(tasks))
	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			s.queue.Push(tasks[i:]...)
			break
		}
		res := s.work(t)
		results = append(results, res)
		switch res.Outcome {
		case Progressed, Blocked, Waiting:
			s.queue.Push(t)
		}
	}
	return results
}

func (s *Scheduler) work(t Task) Result {
	res := Result{Task: t}
	r, ok := s.rosters.Roster(t.Unit)
	if !ok {
		res.Outcome = Failed
		res.Err = errors.New("unit not found")
		s.logger.Warn("Dropping task for unknown unit", "unit", t.Unit.String(), "mount", t.Mount)
		return res
	}
	log := s.logger.With("unit", t.Unit.String(), "mount", t.Mount)

	for range s.maxAttempts {
		if !t.Salvage && !r.NeedsFixing(t.Mount) {
			res.Outcome = Done
			return res
		}
		if reason := r.CheckFixable(t.Mount); reason != "" {
			res.Outcome = Blocked
			res.Reason = reason
			log.Info("Repair blocked", "reason", string(reason))
			return res
		}
		res.Minutes += r.BaseTime(t.Mount)
		err := r.Fix(t.Mount, s.checks)
		switch {
		case errors.Is(err, parts.ErrNoReplacement), errors.Is(err, parts.ErrAlreadyChecked):
			res.Outcome = Waiting
			res.Err = err
			log.Debug("No replacement part", "error", err)
			return res
		case err != nil:
			res.Outcome = Failed
			res.Err = err
			log.Error("Repair failed", "error", err)
			return res
		}
		if t.Salvage {
			res.Outcome = Done
			return res
		}
	}
	if r.NeedsFixing(t.Mount) {
		res.Outcome = Progressed
	} else {
		res.Outcome = Done
	}
	return res
}

// Records returns the queue in its persisted form.
func (s *Scheduler) Records() []core.TaskRecord {
	tasks := s.queue.Items()
	out := make([]core.TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, core.TaskRecord{Unit: t.Unit, Mount: t.Mount, Salvage: t.Salvage})
	}
	return out
}

// Load queues persisted tasks.
func (s *Scheduler) Load(records []core.TaskRecord) {
	for _, rec := range records {
		s.queue.Push(Task{Unit: rec.Unit, Mount: rec.Mount, Salvage: rec.Salvage})
	}
}
