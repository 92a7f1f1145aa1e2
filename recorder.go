package orderkit

import (
	"time"

	"github.com/autom8ter/orderkit/errors"
)

// MetricsRecorder writes order by diagnostics into a statement's command context.
// Every operation checks the context's recording flag and is a no-op when it is disabled.
type MetricsRecorder struct {
	cmdCtx *CommandContext
	now    func() time.Time
}

// RecorderOpt configures a MetricsRecorder
type RecorderOpt func(r *MetricsRecorder)

// WithClock overrides the clock used to measure elapsed time
func WithClock(now func() time.Time) RecorderOpt {
	return func(r *MetricsRecorder) {
		r.now = now
	}
}

// NewMetricsRecorder creates a recorder that writes into the given command context
func NewMetricsRecorder(cmdCtx *CommandContext, opts ...RecorderOpt) *MetricsRecorder {
	r := &MetricsRecorder{
		cmdCtx: cmdCtx,
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// metrics returns the sink if recording is enabled, nil if it is disabled, and an error
// if the recorder was never attached to a command context.
func (r *MetricsRecorder) metrics() (*ExecutionMetrics, error) {
	if r == nil || r.cmdCtx == nil {
		return nil, errors.New(errors.Internal, "metrics recorder: missing command context")
	}
	if !r.cmdCtx.IsRecordingMetrics() {
		return nil, nil
	}
	if r.cmdCtx.Metrics() == nil {
		return nil, errors.New(errors.Internal, "metrics recorder: command context has no metrics")
	}
	return r.cmdCtx.Metrics(), nil
}

// RecordOrderByDecision records whether an index was used for the order by and whether it
// fully sorted the results. Prior values are overwritten.
func (r *MetricsRecorder) RecordOrderByDecision(usedIndex bool, fullySorted bool) error {
	m, err := r.metrics()
	if err != nil || m == nil {
		return err
	}
	m.Set(MetricIndexIsUsedInOrderBy, usedIndex)
	m.Set(MetricFullySortedByIndex, fullySorted)
	return nil
}

// RecordIndexInvolved adds the index to the involved indexes. Composite indexes add their
// constituent names instead of their own.
func (r *MetricsRecorder) RecordIndexInvolved(index IndexDescriptor) error {
	m, err := r.metrics()
	if err != nil || m == nil {
		return err
	}
	if index == nil {
		return errors.New(errors.Internal, "metrics recorder: nil index")
	}
	involved, exists, err := m.GetStringSet(MetricInvolvedIndexes)
	if err != nil {
		return err
	}
	if !exists {
		involved = StringSet{}
		m.Set(MetricInvolvedIndexes, involved)
	}
	if composite, ok := index.(CompositeIndex); ok {
		involved.Add(composite.ConstituentNames()...)
		return nil
	}
	involved.Add(index.IndexName())
	return nil
}

// RecordOrderByElapsed records the time since start as the order by cost
func (r *MetricsRecorder) RecordOrderByElapsed(start time.Time) error {
	m, err := r.metrics()
	if err != nil || m == nil {
		return err
	}
	m.Set(MetricOrderByElapsed, r.now().Sub(start))
	return nil
}
