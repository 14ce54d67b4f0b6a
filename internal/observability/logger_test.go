package observability_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liqpay/liqpay-go/internal/observability"
)

func TestNoopHandler(t *testing.T) {
	t.Parallel()

	h := observability.NewNoopHandler()
	assert.False(t, h.Enabled(context.Background(), slog.LevelError))
	require.NoError(t, h.Handle(context.Background(), slog.Record{}))
	assert.Same(t, h, h.WithAttrs([]slog.Attr{slog.String("k", "v")}))
	assert.Same(t, h, h.WithGroup("g"))

	log := observability.NewNoopLogger()
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
	log.Info("discarded", slog.String("order_id", "1"))
}
