package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

type QuorumService interface {
	Status(ctx context.Context, electionID uuid.UUID) (*domain.QuorumStatus, error)
}

type TallyService interface {
	// Tally aggregates per-option results. It fails with
	// domain.ErrResultsWithheld for deferred-counting elections that are
	// still active.
	Tally(ctx context.Context, electionID uuid.UUID) ([]domain.OptionResult, error)
	Turnout(ctx context.Context, electionID uuid.UUID) (*domain.Turnout, error)
}
