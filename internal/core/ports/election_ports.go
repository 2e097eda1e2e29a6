package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

type ElectionRepository interface {
	Save(ctx context.Context, election *domain.Election) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	// UpdateDraft replaces the mutable fields (title, description, options)
	// of an election that is still in draft. Implementations must refuse the
	// write when the stored phase is no longer draft.
	UpdateDraft(ctx context.Context, election *domain.Election) error
	// TransitionPhase compare-and-swaps the phase column. It returns
	// domain.ErrInvalidTransition when the stored phase differs from `from`,
	// which callers translate into AlreadyStarted/AlreadyClosed.
	TransitionPhase(ctx context.Context, id uuid.UUID, from, to domain.Phase, at time.Time) error
	DueTransitions(ctx context.Context, now time.Time) ([]DueTransition, error)
	SaveAudit(ctx context.Context, audit *domain.TransitionAudit) error
}

type DueTransition struct {
	ElectionID uuid.UUID
	Kind       domain.TransitionKind
}

type CreateOptionInput struct {
	Text      string
	Candidate string
}

type CreateElectionInput struct {
	Title            string
	Description      string
	VotingType       domain.VotingType
	IsSecret         bool
	IsWeighted       bool
	AllowAnonymity   bool
	DeferredCounting bool
	QuorumType       domain.QuorumType
	QuorumRequired   float64
	MaxVoters        int
	ScheduledStart   *time.Time
	ScheduledEnd     *time.Time
	Options          []CreateOptionInput
}

type UpdateElectionInput struct {
	Title       string
	Description string
	Options     []CreateOptionInput
}

type LifecycleService interface {
	Create(ctx context.Context, input CreateElectionInput) (*domain.Election, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, input UpdateElectionInput) (*domain.Election, error)
	Start(ctx context.Context, id uuid.UUID, trigger domain.TransitionTrigger) error
	Close(ctx context.Context, id uuid.UUID, force bool, trigger domain.TransitionTrigger) error
}

// TransitionScheduler is the surface the timer job drives. ApplyScheduled
// treats already-applied transitions as benign no-ops.
type TransitionScheduler interface {
	DueTransitions(ctx context.Context, now time.Time) ([]DueTransition, error)
	ApplyScheduled(ctx context.Context, electionID uuid.UUID, kind domain.TransitionKind) error
}
