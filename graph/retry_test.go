package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flakyNode(failures int, result Payload) (*FuncNode, *int) {
	calls := 0
	n := NewFuncNode("flaky", InheritAll(), InheritAll(),
		func(ctx context.Context, ec *ExecContext) (Payload, error) {
			calls++
			if calls <= failures {
				return nil, errors.New("transient failure")
			}
			return result, nil
		})
	return n, &calls
}

func fastRetryConfig(maxAttempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Retryable:     func(error) bool { return true },
	}
}

func TestRetryNode_SucceedsAfterFailures(t *testing.T) {
	n, calls := flakyNode(2, Payload{"ok": Bool(true)})
	rn := NewRetryNode(n, fastRetryConfig(3))

	out, err := rn.Forward(context.Background(), &ExecContext{Input: Payload{}})
	require.NoError(t, err)
	assert.True(t, out["ok"].Truth())
	assert.Equal(t, 3, *calls)
}

func TestRetryNode_BudgetExhausted(t *testing.T) {
	n, calls := flakyNode(10, nil)
	rn := NewRetryNode(n, fastRetryConfig(3))

	_, err := rn.Forward(context.Background(), &ExecContext{Input: Payload{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, *calls)
}

func TestRetryNode_NonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("bad request")
	n := NewFuncNode("n", InheritAll(), InheritAll(),
		func(ctx context.Context, ec *ExecContext) (Payload, error) {
			return nil, fatal
		})
	cfg := fastRetryConfig(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, fatal) }
	rn := NewRetryNode(n, cfg)

	_, err := rn.Forward(context.Background(), &ExecContext{Input: Payload{}})
	assert.ErrorIs(t, err, fatal)
	assert.NotContains(t, err.Error(), "attempts")
}

func TestRetryNode_Cancellation(t *testing.T) {
	n, _ := flakyNode(10, nil)
	rn := NewRetryNode(n, fastRetryConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rn.Forward(ctx, &ExecContext{Input: Payload{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryNode_NilConfigUsesDefault(t *testing.T) {
	n, _ := flakyNode(0, Payload{})
	rn := NewRetryNode(n, nil)

	out, err := rn.Forward(context.Background(), &ExecContext{Input: Payload{}})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestRetryNode_KeepsWrappedContract(t *testing.T) {
	inner := NewFuncNode("inner",
		Keys(map[string]string{"x": ""}), Keys(map[string]string{"y": ""}), nil)
	rn := NewRetryNode(inner, nil)

	assert.Equal(t, "inner", rn.Name())
	assert.Equal(t, []string{"x"}, rn.PullKeys().Names())
	assert.Equal(t, []string{"y"}, rn.PushKeys().Names())
}
