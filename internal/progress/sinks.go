package progress

import (
	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
)

// LogSink emits structured logs for each progress event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(evt Event) {
	s.logger.Info("cycle progress",
		zap.String("stage", string(evt.Stage)),
		zap.String("source", evt.Source),
		zap.Int("articles", evt.Articles),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	)
}

// StatusSink mirrors each event into the shared CycleStatus progress line so
// the status endpoint always shows the latest milestone.
type StatusSink struct {
	status *feed.CycleStatus
}

// NewStatusSink wires the shared status record to the sink interface.
func NewStatusSink(status *feed.CycleStatus) *StatusSink {
	return &StatusSink{status: status}
}

// Consume updates the progress line.
func (s *StatusSink) Consume(evt Event) {
	if s.status != nil {
		s.status.SetProgress(evt.Message())
	}
}

// MetricsSink forwards cycle and source milestones to Prometheus.
type MetricsSink struct{}

// NewMetricsSink returns a MetricsSink; metrics.Init must have run.
func NewMetricsSink() *MetricsSink {
	return &MetricsSink{}
}

// Consume translates events into collector updates.
func (s *MetricsSink) Consume(evt Event) {
	switch evt.Stage {
	case StageSourceDone:
		metrics.ObserveSourceArticles(evt.Source, evt.Articles)
	case StageCycleDone:
		metrics.ObserveCycle("success", evt.Dur)
	case StageCycleError:
		metrics.ObserveCycle("error", evt.Dur)
	}
}
