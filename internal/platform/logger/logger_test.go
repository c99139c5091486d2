package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		wantErr  bool
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "case insensitive", logLevel: "INFO"},
		{name: "empty defaults to info", logLevel: ""},
		{name: "invalid level", logLevel: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Setup(config.ServerConfig{LogLevel: tt.logLevel})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestFromContext(t *testing.T) {
	base := slog.Default()

	// Empty context falls back to the default logger.
	assert.Equal(t, base, logger.FromContext(context.Background()))

	stored := base.With(slog.String("component", "test"))
	ctx := logger.WithLogger(context.Background(), stored)
	assert.Equal(t, stored, logger.FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	def := slog.Default().With(slog.String("component", "store"))

	// No logger in context: the provided default wins.
	assert.Equal(t, def, logger.FromContextOrDefault(context.Background(), def))

	// Logger in context: it wins over the default.
	stored := slog.Default().With(slog.String("trace_id", "abc"))
	ctx := logger.WithLogger(context.Background(), stored)
	assert.Equal(t, stored, logger.FromContextOrDefault(ctx, def))

	// Nothing anywhere: slog.Default.
	assert.Equal(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}
