package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/mocks"
)

func newReaper(t *testing.T, repo *mocks.MockJobRepository) *ReaperService {
	t.Helper()
	svc, err := NewReaperService(ReaperServiceOptions{
		Repo: repo,
		Config: config.ReaperConfig{
			Interval:   time.Second,
			StaleAfter: 10 * time.Minute,
			BatchSize:  50,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestReaperService_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	svc := newReaper(t, repo)

	repo.EXPECT().FailStale(gomock.Any(), gomock.Any(), 50).DoAndReturn(
		func(_ context.Context, cutoff time.Time, _ int) (int, error) {
			// Cutoff sits StaleAfter in the past, give or take scheduling.
			assert.WithinDuration(t, time.Now().Add(-10*time.Minute), cutoff, 5*time.Second)
			return 3, nil
		})

	reaped, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, reaped)
}

func TestReaperService_Sweep_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	svc := newReaper(t, repo)

	repo.EXPECT().FailStale(gomock.Any(), gomock.Any(), 50).Return(0, errors.New("db down"))

	_, err := svc.Sweep(context.Background())
	assert.Error(t, err)
}

func TestReaperService_Run_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	svc := newReaper(t, repo)

	repo.EXPECT().FailStale(gomock.Any(), gomock.Any(), 50).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}

func TestReaperService_RequiresRepo(t *testing.T) {
	_, err := NewReaperService(ReaperServiceOptions{})
	assert.Error(t, err)
}
