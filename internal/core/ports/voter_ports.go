package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

type VoterRepository interface {
	Save(ctx context.Context, voter *domain.Voter) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error)
	GetByToken(ctx context.Context, token string) (*domain.Voter, error)
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]*domain.Voter, error)
	CountByElection(ctx context.Context, electionID uuid.UUID) (int, error)
	Update(ctx context.Context, voter *domain.Voter) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AddVoterInput struct {
	ElectionID uuid.UUID
	Email      string
	Name       string
	Weight     float64
}

type UpdateVoterInput struct {
	Name   string
	Weight float64
}

type VoterService interface {
	AddVoter(ctx context.Context, input AddVoterInput) (*domain.Voter, error)
	// ResolveToken maps a one-time token to its voter. It fails with
	// domain.ErrElectionNotActive outside the active phase so tokens leak
	// nothing before the election opens or after it closes.
	ResolveToken(ctx context.Context, token string) (*domain.Voter, error)
	UpdateVoter(ctx context.Context, id uuid.UUID, input UpdateVoterInput) (*domain.Voter, error)
	RemoveVoter(ctx context.Context, id uuid.UUID) error
	// ResetTokens reissues every token of a draft election, invalidating any
	// invitations already sent.
	ResetTokens(ctx context.Context, electionID uuid.UUID) (int, error)
	ListVoters(ctx context.Context, electionID uuid.UUID) ([]*domain.Voter, error)
}
