// Package monitor periodically writes a status file for the running
// campaign and autosaves it through the dispatcher when it has changed.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/OCAP2/armory/internal/dispatcher"
	"github.com/OCAP2/armory/internal/worker"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Worker     *worker.Manager
	Dispatcher *dispatcher.Dispatcher
	Logger     *slog.Logger
	// StatusPath is rewritten every tick; empty disables the file.
	StatusPath string
	Interval   time.Duration
	// MinChanges is the unsaved change count that triggers an autosave;
	// zero disables autosave.
	MinChanges int
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the current status lines.
func (s *Service) GetProgramStatus() []string {
	c := s.deps.Worker.Campaign()
	lastSave, took := s.deps.Worker.LastSave()
	saved := "never"
	if !lastSave.IsZero() {
		saved = fmt.Sprintf("%s (%dms)", lastSave.UTC().Format(time.RFC3339), took.Milliseconds())
	}
	return []string{
		fmt.Sprintf("campaign: %s", c.Name()),
		fmt.Sprintf("day: %s", c.Day().Format("2006-01-02")),
		fmt.Sprintf("units: %d", c.Units().Len()),
		fmt.Sprintf("pending tasks: %d", len(c.Scheduler().Pending())),
		fmt.Sprintf("unsaved changes: %d", c.Changes()),
		fmt.Sprintf("last save: %s", saved),
	}
}

// Tick writes the status file and queues a save if enough has changed.
func (s *Service) Tick(ctx context.Context) {
	if s.deps.StatusPath != "" {
		if err := s.writeStatus(); err != nil {
			s.deps.Logger.Error("Error writing status file", "path", s.deps.StatusPath, "error", err)
		}
	}
	if s.deps.MinChanges <= 0 || s.deps.Dispatcher == nil {
		return
	}
	if s.deps.Worker.Campaign().Changes() < s.deps.MinChanges {
		return
	}
	if _, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Context: ctx, Command: "save"}); err != nil {
		s.deps.Logger.Warn("Autosave not queued", "error", err)
	}
}

func (s *Service) writeStatus() error {
	if err := os.MkdirAll(filepath.Dir(s.deps.StatusPath), 0755); err != nil {
		return err
	}
	var data []byte
	for _, line := range s.GetProgramStatus() {
		data = append(data, line...)
		data = append(data, '\n')
	}
	return os.WriteFile(s.deps.StatusPath, data, 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(done)
		}()

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.isRunning = false
	s.mu.Unlock()
	<-done
}
