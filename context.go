package orderkit

import (
	"context"
	"encoding/json"
)

type ctxKey int

const (
	commandContextKey ctxKey = 0
)

// CommandContext is owned by a single statement execution. It holds the statement's
// execution metrics, whether metrics are recorded, and arbitrary variables.
// It is not safe for concurrent use; concurrent statements each create their own.
type CommandContext struct {
	recordMetrics bool
	metrics       *ExecutionMetrics
	variables     map[string]any
}

// NewCommandContext creates a command context with the given variables
func NewCommandContext(variables map[string]any) *CommandContext {
	c := &CommandContext{
		metrics:   NewExecutionMetrics(),
		variables: map[string]any{},
	}
	for k, v := range variables {
		c.variables[k] = v
	}
	return c
}

// SetRecordMetrics enables or disables metrics recording
func (c *CommandContext) SetRecordMetrics(record bool) {
	c.recordMetrics = record
}

// IsRecordingMetrics returns true if metrics are being recorded
func (c *CommandContext) IsRecordingMetrics() bool {
	return c.recordMetrics
}

// Metrics returns the statement's execution metrics
func (c *CommandContext) Metrics() *ExecutionMetrics {
	return c.metrics
}

// SetVariable sets a variable on the context
func (c *CommandContext) SetVariable(key string, value any) {
	c.variables[key] = value
}

// GetVariable gets a variable from the context if it exists
func (c *CommandContext) GetVariable(key string) (any, bool) {
	v, ok := c.variables[key]
	return v, ok
}

// Variables returns a copy of the context variables
func (c *CommandContext) Variables() map[string]any {
	data := map[string]any{}
	for k, v := range c.variables {
		data[k] = v
	}
	return data
}

// String return a json string of the context
func (c *CommandContext) String() string {
	bits, _ := c.MarshalJSON()
	return string(bits)
}

// MarshalJSON returns the context's variables and metrics as json bytes
func (c *CommandContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"recordMetrics": c.recordMetrics,
		"variables":     c.variables,
		"metrics":       c.metrics,
	})
}

// ToContext adds the command context to the input go context
func (c *CommandContext) ToContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, commandContextKey, c)
}

// GetCommandContext gets the command context from the go context if it exists
func GetCommandContext(ctx context.Context) (*CommandContext, bool) {
	c, ok := ctx.Value(commandContextKey).(*CommandContext)
	if ok && c != nil {
		return c, true
	}
	return nil, false
}
