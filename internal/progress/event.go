// Package progress defines the events emitted while a cycle runs and the
// sinks they fan out to. The fan-out is synchronous: a cycle emits tens of
// events per quarter hour, so there is nothing to batch.
package progress

import (
	"fmt"
	"time"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageCycleStart  Stage = "CYCLE_START"
	StageSourceStart Stage = "SOURCE_START"
	StageSourceDone  Stage = "SOURCE_DONE"
	StageCycleDone   Stage = "CYCLE_DONE"
	StageCycleError  Stage = "CYCLE_ERROR"
	StageStaged      Stage = "STAGED"
	StagePublished   Stage = "PUBLISHED"
)

// Event captures a single milestone of cycle progress.
type Event struct {
	TS       time.Time
	Stage    Stage
	Source   string
	Articles int
	Dur      time.Duration
	Note     string
}

// Message renders the event as the human-readable progress line shown by the
// status endpoint.
func (e Event) Message() string {
	switch e.Stage {
	case StageCycleStart:
		return "scrape started"
	case StageSourceStart:
		return fmt.Sprintf("%s: fetching", e.Source)
	case StageSourceDone:
		return fmt.Sprintf("%s: %d articles in %.1fs", e.Source, e.Articles, e.Dur.Seconds())
	case StageCycleDone:
		return fmt.Sprintf("scrape done: %d articles in %.0fs", e.Articles, e.Dur.Seconds())
	case StageCycleError:
		return "scrape failed: " + e.Note
	case StageStaged:
		return fmt.Sprintf("staged %d articles", e.Articles)
	case StagePublished:
		return "published staged snapshot"
	default:
		return string(e.Stage)
	}
}

// Sink consumes progress events.
type Sink interface {
	Consume(evt Event)
}

// Tracker fans events out to its sinks. A nil Tracker discards everything.
type Tracker struct {
	sinks []Sink
}

// NewTracker builds a Tracker over the given sinks.
func NewTracker(sinks ...Sink) *Tracker {
	return &Tracker{sinks: sinks}
}

// Emit delivers evt to every sink in registration order.
func (t *Tracker) Emit(evt Event) {
	if t == nil {
		return
	}
	if evt.TS.IsZero() {
		evt.TS = time.Now()
	}
	for _, s := range t.sinks {
		if s != nil {
			s.Consume(evt)
		}
	}
}
