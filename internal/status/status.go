// Package status answers "how is my recap doing" for pollers: the
// per-year recap status plus the live ingest progress snapshot.
package status

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

// QueuePositioner reports a job's position in the work queue, when the
// queueing backend can answer that. Implementations are optional.
type QueuePositioner interface {
	Position(ctx context.Context, jobID string) (int, error)
}

type StatusReader interface {
	RecapStatus(ctx context.Context, puuid string, year int) (status, reason string, err error)
}

type ProgressReader interface {
	Get(ctx context.Context, puuid string, year int) (*domain.ProgressSnapshot, error)
}

// Report is one poll response.
type Report struct {
	Status        string                   `json:"status"`
	FailureReason string                   `json:"failure_reason,omitempty"`
	Progress      *domain.ProgressSnapshot `json:"progress,omitempty"`
	QueuePosition *int                     `json:"queue_position,omitempty"`
}

type Service struct {
	players    StatusReader
	progress   ProgressReader
	positioner QueuePositioner
	logger     zerolog.Logger
}

// NewService builds the status service. positioner may be nil.
func NewService(players StatusReader, progressStore ProgressReader, positioner QueuePositioner, logger zerolog.Logger) *Service {
	return &Service{players: players, progress: progressStore, positioner: positioner, logger: logger}
}

// Recap returns the recap status for one (player, year), enriched with
// the live progress snapshot while a run is underway.
func (s *Service) Recap(ctx context.Context, puuid string, year int) (*Report, error) {
	recapStatus, reason, err := s.players.RecapStatus(ctx, puuid, year)
	if err != nil {
		return nil, err
	}

	report := &Report{Status: recapStatus}
	if recapStatus == domain.RecapStatusFailed {
		report.FailureReason = reason
	}
	if recapStatus != domain.RecapStatusGenerating {
		return report, nil
	}

	snapshot, err := s.progress.Get(ctx, puuid, year)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to read ingest progress")
		return report, nil
	}
	report.Progress = snapshot

	if s.positioner != nil && snapshot != nil && snapshot.JobID != "" {
		if pos, err := s.positioner.Position(ctx, snapshot.JobID); err == nil {
			report.QueuePosition = &pos
		}
	}
	return report, nil
}
