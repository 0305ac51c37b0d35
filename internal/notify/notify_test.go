package notify

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_Notify(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.Notify(context.Background(), "s-1", "status_changed", "stopped"))
}

func TestSlackNotifier_BadTokenReturnsError(t *testing.T) {
	n := NewSlackNotifier("xoxb-invalid", "#sessions", zerolog.Nop())
	err := n.Notify(context.Background(), "s-1", "error", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to post slack notification")
}
