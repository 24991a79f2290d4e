package status

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

type fakeStatuses struct {
	status string
	reason string
	err    error
}

func (f *fakeStatuses) RecapStatus(context.Context, string, int) (string, string, error) {
	return f.status, f.reason, f.err
}

type fakeProgress struct {
	snapshot *domain.ProgressSnapshot
	err      error
}

func (f *fakeProgress) Get(context.Context, string, int) (*domain.ProgressSnapshot, error) {
	return f.snapshot, f.err
}

type fakePositioner struct {
	position int
	err      error
	calls    int
}

func (f *fakePositioner) Position(context.Context, string) (int, error) {
	f.calls++
	return f.position, f.err
}

func intp(v int) *int { return &v }

func TestRecapReadyOmitsProgress(t *testing.T) {
	svc := NewService(&fakeStatuses{status: domain.RecapStatusReady}, &fakeProgress{}, nil, zerolog.Nop())

	report, err := svc.Recap(context.Background(), "puuid", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.RecapStatusReady, report.Status)
	assert.Empty(t, report.FailureReason)
	assert.Nil(t, report.Progress)
	assert.Nil(t, report.QueuePosition)
}

func TestRecapFailedCarriesReason(t *testing.T) {
	svc := NewService(&fakeStatuses{status: domain.RecapStatusFailed, reason: "upstream gave up"},
		&fakeProgress{}, nil, zerolog.Nop())

	report, err := svc.Recap(context.Background(), "puuid", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.RecapStatusFailed, report.Status)
	assert.Equal(t, "upstream gave up", report.FailureReason)
}

func TestRecapGeneratingAttachesProgressAndPosition(t *testing.T) {
	snapshot := &domain.ProgressSnapshot{
		Phase:      domain.PhaseDownloading,
		Downloaded: intp(42),
		JobID:      "job-1",
	}
	positioner := &fakePositioner{position: 3}
	svc := NewService(&fakeStatuses{status: domain.RecapStatusGenerating},
		&fakeProgress{snapshot: snapshot}, positioner, zerolog.Nop())

	report, err := svc.Recap(context.Background(), "puuid", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.RecapStatusGenerating, report.Status)
	require.NotNil(t, report.Progress)
	assert.Equal(t, domain.PhaseDownloading, report.Progress.Phase)
	require.NotNil(t, report.QueuePosition)
	assert.Equal(t, 3, *report.QueuePosition)
}

func TestRecapGeneratingDegradesWhenProgressUnreadable(t *testing.T) {
	svc := NewService(&fakeStatuses{status: domain.RecapStatusGenerating},
		&fakeProgress{err: errors.New("redis down")}, nil, zerolog.Nop())

	report, err := svc.Recap(context.Background(), "puuid", 2025)
	require.NoError(t, err, "a broken progress read must not fail the poll")
	assert.Equal(t, domain.RecapStatusGenerating, report.Status)
	assert.Nil(t, report.Progress)
}

func TestRecapPositionSkippedWithoutJobID(t *testing.T) {
	positioner := &fakePositioner{position: 7}
	svc := NewService(&fakeStatuses{status: domain.RecapStatusGenerating},
		&fakeProgress{snapshot: &domain.ProgressSnapshot{Phase: domain.PhaseDownloading}},
		positioner, zerolog.Nop())

	report, err := svc.Recap(context.Background(), "puuid", 2025)
	require.NoError(t, err)
	assert.Nil(t, report.QueuePosition)
	assert.Zero(t, positioner.calls)
}

func TestRecapStatusErrorPropagates(t *testing.T) {
	svc := NewService(&fakeStatuses{err: errors.New("no such player")}, &fakeProgress{}, nil, zerolog.Nop())

	_, err := svc.Recap(context.Background(), "puuid", 2025)
	require.Error(t, err)
}
