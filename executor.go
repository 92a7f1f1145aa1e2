package orderkit

import (
	"context"
	"time"

	"github.com/autom8ter/orderkit/errors"
	"golang.org/x/sync/errgroup"
)

// OrderStatement is an order by clause with its candidate indexes
type OrderStatement struct {
	// Indexes are the candidate indexes in declaration order
	Indexes []IndexDescriptor
	// OrderBy is the requested sort order
	OrderBy []OrderBy
	// Lookup is the index used to locate the statement's documents, if any. It is always
	// reported as involved.
	Lookup IndexDescriptor
}

// UpdateStatement patches every document a source yields
type UpdateStatement struct {
	// Source yields the documents to update
	Source RecordSource
	// Args are passed to Source.Iterator
	Args map[string]any
	// Patch is applied to each document; nested objects are merged
	Patch map[string]any
	// Return selects the statement's result (default: COUNT)
	Return ReturnMode
	// Projection is applied to returned documents (BEFORE and AFTER only)
	Projection Projector
	// Limit stops the update after n documents when > 0
	Limit int
}

// Explain is the typed view of a statement's order by metrics. Json keys match the metric keys.
type Explain struct {
	Plan                 OrderPlan `json:"plan"`
	IndexIsUsedInOrderBy bool      `json:"indexIsUsedInOrderBy"`
	FullySortedByIndex   bool      `json:"fullySortedByIndex"`
	InvolvedIndexes      []string  `json:"involvedIndexes"`
	// OrderByElapsed is in milliseconds
	OrderByElapsed int64 `json:"orderByElapsed"`
}

// Executor drives order by planning and update statements
type Executor struct {
	logger    Logger
	optimizer Optimizer
}

// ExecutorOpt configures an Executor
type ExecutorOpt func(e *Executor)

// WithLogger sets the executor's logger
func WithLogger(logger Logger) ExecutorOpt {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithOptimizer sets the executor's optimizer
func WithOptimizer(optimizer Optimizer) ExecutorOpt {
	return func(e *Executor) {
		e.optimizer = optimizer
	}
}

// NewExecutor creates an executor with a no-op logger and the default optimizer
func NewExecutor(opts ...ExecutorOpt) *Executor {
	e := &Executor{
		logger:    NewNopLogger(),
		optimizer: defaultOptimizer{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ExplainOrder chooses an index for the statement's order by and records the decision in the
// command context carried by ctx. ctx must carry a command context.
func (e *Executor) ExplainOrder(ctx context.Context, stmt OrderStatement) (OrderPlan, error) {
	cmdCtx, ok := GetCommandContext(ctx)
	if !ok {
		return OrderPlan{}, errors.New(errors.Internal, "explain order: missing command context")
	}
	start := time.Now()
	recorder := NewMetricsRecorder(cmdCtx)
	plan := e.optimizer.OptimizeOrder(stmt.Indexes, stmt.OrderBy)
	if err := recorder.RecordOrderByDecision(plan.UsedIndex, plan.FullySorted); err != nil {
		return OrderPlan{}, err
	}
	if stmt.Lookup != nil {
		if err := recorder.RecordIndexInvolved(stmt.Lookup); err != nil {
			return OrderPlan{}, err
		}
	}
	if plan.UsedIndex {
		if err := recorder.RecordIndexInvolved(plan.Index); err != nil {
			return OrderPlan{}, err
		}
	}
	if err := recorder.RecordOrderByElapsed(start); err != nil {
		return OrderPlan{}, err
	}
	e.logger.Debug(ctx, "explained order by", map[string]any{
		"orderBy":     stmt.OrderBy,
		"index":       plan.IndexName,
		"fullySorted": plan.FullySorted,
		"reverse":     plan.Reverse,
	})
	return plan, nil
}

// ExplainOrders explains independent statements concurrently. Each statement gets its own command
// context with metrics recording enabled.
func (e *Executor) ExplainOrders(ctx context.Context, stmts []OrderStatement) ([]Explain, error) {
	explains := make([]Explain, len(stmts))
	egp, ctx := errgroup.WithContext(ctx)
	for i, stmt := range stmts {
		i, stmt := i, stmt
		egp.Go(func() error {
			cmdCtx := NewCommandContext(nil)
			cmdCtx.SetRecordMetrics(true)
			plan, err := e.ExplainOrder(cmdCtx.ToContext(ctx), stmt)
			if err != nil {
				return err
			}
			explain, err := ExplainMetrics(cmdCtx.Metrics())
			if err != nil {
				return err
			}
			explain.Plan = plan
			explains[i] = explain
			return nil
		})
	}
	if err := egp.Wait(); err != nil {
		return nil, err
	}
	return explains, nil
}

// Update applies the statement's patch to every document its source yields and returns the
// result selected by the statement's return mode. Documents are patched in place; sources that
// implement RecordWriter persist each updated document.
func (e *Executor) Update(ctx context.Context, stmt UpdateStatement) (Result, error) {
	if stmt.Source == nil {
		return Result{}, errors.New(errors.Validation, "update: missing source")
	}
	mode, err := ParseReturnMode(string(stmt.Return))
	if err != nil {
		return Result{}, err
	}
	var opts []ReturnerOpt
	if stmt.Projection != nil {
		opts = append(opts, WithProjection(stmt.Projection))
	}
	returner, err := NewReturner(mode, opts...)
	if err != nil {
		return Result{}, err
	}
	writer, persist := stmt.Source.(RecordWriter)
	updated := 0
	if err := ForEach(ctx, stmt.Source, stmt.Args, func(doc *Document) (bool, error) {
		if err := returner.BeforeUpdate(doc); err != nil {
			return false, err
		}
		if err := doc.Patch(stmt.Patch); err != nil {
			return false, err
		}
		if persist {
			if err := writer.Write(ctx, doc); err != nil {
				return false, err
			}
		}
		if err := returner.AfterUpdate(doc); err != nil {
			return false, err
		}
		updated++
		return stmt.Limit <= 0 || updated < stmt.Limit, nil
	}); err != nil {
		e.logger.Error(ctx, "update failed", err, map[string]any{"updated": updated})
		return Result{}, err
	}
	e.logger.Debug(ctx, "updated documents", map[string]any{
		"updated": updated,
		"return":  mode,
	})
	return returner.Result(), nil
}

// ExplainMetrics reads the order by metrics. Missing metrics are zero values; metrics of the
// wrong type are an internal error.
func ExplainMetrics(metrics *ExecutionMetrics) (Explain, error) {
	if metrics == nil {
		return Explain{}, errors.New(errors.Internal, "explain: missing metrics")
	}
	var (
		explain Explain
		err     error
	)
	if explain.IndexIsUsedInOrderBy, _, err = metrics.GetBool(MetricIndexIsUsedInOrderBy); err != nil {
		return Explain{}, err
	}
	if explain.FullySortedByIndex, _, err = metrics.GetBool(MetricFullySortedByIndex); err != nil {
		return Explain{}, err
	}
	involved, _, err := metrics.GetStringSet(MetricInvolvedIndexes)
	if err != nil {
		return Explain{}, err
	}
	explain.InvolvedIndexes = StringSet{}.Sorted()
	if involved != nil {
		explain.InvolvedIndexes = involved.Sorted()
	}
	elapsed, _, err := metrics.GetDuration(MetricOrderByElapsed)
	if err != nil {
		return Explain{}, err
	}
	explain.OrderByElapsed = elapsed.Milliseconds()
	return explain, nil
}
