package utils

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errNotFound = errors.New("not found")

func TestRetry(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 2, time.Millisecond, func() error {
			calls++
			return errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 5, time.Millisecond, func() error {
			calls++
			return errNotFound
		}, errNotFound)
		assert.ErrorIs(t, err, errNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Retry(ctx, 3, time.Second, func() error { return errors.New("down") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "DESC", Ternary(true, "DESC", "ASC"))
	assert.Equal(t, "ASC", Ternary(false, "DESC", "ASC"))
}

func TestUnmarshalAndHandle(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	var got payload
	ok := UnmarshalAndHandle(zap.NewNop(), json.RawMessage(`{"name":"x"}`), func(p payload) { got = p })
	assert.True(t, ok)
	assert.Equal(t, "x", got.Name)

	ok = UnmarshalAndHandle(zap.NewNop(), json.RawMessage(`{`), func(payload) { t.Fatal("handler called") })
	assert.False(t, ok)
}
