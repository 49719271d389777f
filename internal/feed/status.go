package feed

import (
	"sync"
	"time"
)

// CycleStatus is the process-wide cycle state record. The scheduler writes it
// and the API layer reads it concurrently, so every access goes through the
// mutex. Critical sections are copy-in/copy-out only.
type CycleStatus struct {
	mu        sync.Mutex
	running   bool
	lastCycle time.Time
	progress  string
}

// StatusView is a point-in-time copy of the status record.
type StatusView struct {
	Running   bool
	LastCycle time.Time
	Progress  string
}

// NewCycleStatus returns an idle status record.
func NewCycleStatus() *CycleStatus {
	return &CycleStatus{}
}

// SetRunning marks whether a cycle is currently active.
func (s *CycleStatus) SetRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

// SetProgress records a human-readable progress line.
func (s *CycleStatus) SetProgress(msg string) {
	s.mu.Lock()
	s.progress = msg
	s.mu.Unlock()
}

// MarkCompleted records the completion time of the most recent cycle.
func (s *CycleStatus) MarkCompleted(t time.Time) {
	s.mu.Lock()
	s.lastCycle = t
	s.mu.Unlock()
}

// View returns a consistent copy of the record.
func (s *CycleStatus) View() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusView{
		Running:   s.running,
		LastCycle: s.lastCycle,
		Progress:  s.progress,
	}
}
