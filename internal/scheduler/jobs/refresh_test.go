package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/performance"
	"github.com/wonny/perfdash/pkg/logger"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func TestRefreshJob_Metadata(t *testing.T) {
	job := NewRefreshJob(refresherFunc(func(context.Context) error { return nil }), time.Minute, logger.Nop())

	assert.Equal(t, RefreshJobName, job.Name())
	assert.Equal(t, "@every 1m0s", job.Schedule())
}

func TestRefreshJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"success", nil, nil},
		{"superseded is not a failure", performance.ErrSuperseded, nil},
		{"upstream failure surfaces", fmt.Errorf("equity history: %w", contracts.ErrDataUnavailable), contracts.ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewRefreshJob(refresherFunc(func(context.Context) error { return tt.err }), time.Minute, logger.Nop())

			err := job.Run(context.Background())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestRefreshJob_RunIsBoundedByInterval(t *testing.T) {
	job := NewRefreshJob(refresherFunc(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-ctx.Done()
		return ctx.Err()
	}), 50*time.Millisecond, logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
