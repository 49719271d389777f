// Package scheduler drives the unending refresh cycle: run the pipeline,
// stage the result, wait out the settle window, then atomically publish.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
	"github.com/senthilkr/tamil-news-feed/internal/progress"
)

// Pipeline runs one full fetch-extract-rank pass over the given sources.
type Pipeline interface {
	Run(ctx context.Context, sources []feed.Source) feed.Snapshot
}

// Config sets the cycle timing.
type Config struct {
	// Quiet is how long the previous snapshot stays untouched between cycles.
	Quiet time.Duration
	// Settle is how long a staged snapshot sits unpublished before the swap,
	// giving external processes a window before the live artifact changes.
	Settle time.Duration
}

const (
	defaultQuiet  = 13 * time.Minute
	defaultSettle = 2 * time.Minute
)

// Scheduler owns the cycle loop and the shared status record. Cycles are
// strictly sequential: a new one never starts before the previous publish
// step completes, and manual fresh scrapes serialize with the loop.
type Scheduler struct {
	pipeline  Pipeline
	selection feed.SelectionProvider
	store     feed.SnapshotStore
	status    *feed.CycleStatus
	clock     feed.Clock
	logger    *zap.Logger
	tracker   *progress.Tracker
	cfg       Config

	cycleGate chan struct{}
}

// New constructs a Scheduler.
func New(
	pipeline Pipeline,
	selection feed.SelectionProvider,
	store feed.SnapshotStore,
	status *feed.CycleStatus,
	clock feed.Clock,
	logger *zap.Logger,
	tracker *progress.Tracker,
	cfg Config,
) *Scheduler {
	if cfg.Quiet <= 0 {
		cfg.Quiet = defaultQuiet
	}
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := make(chan struct{}, 1)
	gate <- struct{}{}
	return &Scheduler{
		pipeline:  pipeline,
		selection: selection,
		store:     store,
		status:    status,
		clock:     clock,
		logger:    logger,
		tracker:   tracker,
		cfg:       cfg,
		cycleGate: gate,
	}
}

// Run blocks until ctx finishes. It performs one synchronous cycle up front,
// published live immediately since there is no prior snapshot to protect, then
// loops: quiet sleep, active cycle staged to temp, settle sleep, atomic swap.
// A failed cycle stages nothing and leaves the prior live snapshot in place.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("initial scrape starting")
	if snap, err := s.runCycle(ctx); err != nil {
		s.logger.Error("initial scrape failed", zap.Error(err))
	} else if err := s.store.WriteLive(snap); err != nil {
		s.logger.Error("initial publish failed", zap.Error(err))
	} else {
		metrics.SetLiveCounts(snap.TotalCount, snap.TrendingCount)
		s.tracker.Emit(progress.Event{Stage: progress.StagePublished, Articles: snap.TotalCount})
	}
	s.status.MarkCompleted(s.clock.Now())

	for {
		if !s.sleep(ctx, s.cfg.Quiet) {
			return
		}

		s.status.SetRunning(true)
		snap, err := s.runCycle(ctx)
		staged := false
		if err != nil {
			s.logger.Error("background scrape failed", zap.Error(err))
		} else if stageErr := s.store.WriteStaged(snap); stageErr != nil {
			s.logger.Error("stage snapshot failed", zap.Error(stageErr))
		} else {
			staged = true
			s.tracker.Emit(progress.Event{Stage: progress.StageStaged, Articles: snap.TotalCount})
		}
		s.status.SetRunning(false)
		s.status.MarkCompleted(s.clock.Now())

		if !s.sleep(ctx, s.cfg.Settle) {
			return
		}

		if staged {
			if err := s.store.Promote(); err != nil {
				s.logger.Error("promote snapshot failed", zap.Error(err))
				continue
			}
			metrics.SetLiveCounts(snap.TotalCount, snap.TrendingCount)
			s.tracker.Emit(progress.Event{Stage: progress.StagePublished, Articles: snap.TotalCount})
		}
	}
}

// RunFresh performs one out-of-band cycle and publishes it live directly,
// bypassing the staged slot. Used by the manual refresh endpoint.
func (s *Scheduler) RunFresh(ctx context.Context) (feed.Snapshot, error) {
	snap, err := s.runCycle(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	if err := s.store.WriteLive(snap); err != nil {
		return feed.Snapshot{}, fmt.Errorf("publish fresh snapshot: %w", err)
	}
	metrics.SetLiveCounts(snap.TotalCount, snap.TrendingCount)
	s.tracker.Emit(progress.Event{Stage: progress.StagePublished, Articles: snap.TotalCount})
	return snap, nil
}

// runCycle executes one full pipeline pass. The selection is re-read fresh
// every call, so selection changes take effect on the next cycle. Panics are
// contained here: an escaped pipeline failure abandons the cycle, nothing
// more.
func (s *Scheduler) runCycle(ctx context.Context) (snap feed.Snapshot, err error) {
	select {
	case <-s.cycleGate:
	case <-ctx.Done():
		return feed.Snapshot{}, ctx.Err()
	}
	defer func() { s.cycleGate <- struct{}{} }()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
			s.tracker.Emit(progress.Event{Stage: progress.StageCycleError, Note: err.Error()})
		}
	}()

	sources := feed.SelectSources(s.selection.Selection())
	snap = s.pipeline.Run(ctx, sources)
	if ctx.Err() != nil {
		return feed.Snapshot{}, fmt.Errorf("cycle interrupted: %w", ctx.Err())
	}
	s.tracker.Emit(progress.Event{
		Stage:    progress.StageCycleDone,
		Articles: snap.TotalCount,
		Dur:      time.Duration(snap.ElapsedMs) * time.Millisecond,
	})
	return snap, nil
}

// sleep waits for d or until ctx finishes; it reports whether the wait ran to
// completion.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
