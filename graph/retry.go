package graph

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/smallnest/agentgraph/log"
)

// RetryConfig configures retry behavior for a wrapped node.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// Retryable decides whether an error should trigger another attempt.
	Retryable func(error) bool
}

// DefaultRetryConfig returns a retry configuration with exponential backoff
// that retries every error.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Retryable:     func(error) bool { return true },
	}
}

// RetryNode wraps a node's forward phase with retry logic. The scheduler
// never retries; a failing node either recovers inside its wrapper or fails
// the invocation. Wrap leaf nodes only: a wrapped switch loses its gating.
type RetryNode struct {
	Node
	config *RetryConfig
}

// NewRetryNode wraps a node with retry behavior.
func NewRetryNode(n Node, config *RetryConfig) *RetryNode {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryNode{Node: n, config: config}
}

// Forward runs the wrapped node, retrying retryable failures with jittered
// backoff until the attempt budget is spent.
func (rn *RetryNode) Forward(ctx context.Context, ec *ExecContext) (Payload, error) {
	var lastErr error
	delay := rn.config.InitialDelay

	for attempt := 1; attempt <= rn.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		out, err := rn.Node.Forward(ctx, ec)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if rn.config.Retryable != nil && !rn.config.Retryable(err) {
			return nil, err
		}
		if attempt == rn.config.MaxAttempts {
			break
		}

		log.Debug("node %s: attempt %d failed, retrying in %v: %v", rn.Name(), attempt, delay, err)

		jittered := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		select {
		case <-time.After(jittered):
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}

		delay = time.Duration(float64(delay) * rn.config.BackoffFactor)
		if rn.config.MaxDelay > 0 && delay > rn.config.MaxDelay {
			delay = rn.config.MaxDelay
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", rn.config.MaxAttempts, lastErr)
}
