package health

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestChecker_AllPassing(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("a", func(context.Context) Status { return StatusOK })
	c.Register("b", func(context.Context) Status { return StatusOK })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusOK, results["a"])
	assert.Equal(t, StatusOK, results["b"])
	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_OneFailing(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("a", func(context.Context) Status { return StatusOK })
	c.Register("b", func(context.Context) Status { return StatusDown })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusDown, results["b"])
	assert.False(t, c.IsReady(context.Background()))
}

func TestChecker_NoChecks(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.Empty(t, c.RunAll(context.Background()))
	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_ReceivesContext(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("ctx", func(ctx context.Context) Status {
		if _, ok := ctx.Deadline(); !ok {
			return StatusDown
		}
		return StatusOK
	})
	assert.True(t, c.IsReady(context.Background()))
}
