package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

// BallotRepository appends cast votes. The Append methods are the single
// serialization point of the protocol: each one compare-and-swaps the voter's
// has_voted flag and, in the same transaction, appends the ballot (or public
// vote) and the attendance entry. A CAS that finds has_voted already true
// returns domain.ErrAlreadyVoted and writes nothing.
type BallotRepository interface {
	AppendSecret(ctx context.Context, voterID uuid.UUID, ballot *domain.Ballot, entry *domain.AttendanceEntry) error
	AppendPublic(ctx context.Context, voterID uuid.UUID, vote *domain.PublicVote, entry *domain.AttendanceEntry) error
	ListSecret(ctx context.Context, electionID uuid.UUID) ([]*domain.Ballot, error)
	ListPublic(ctx context.Context, electionID uuid.UUID) ([]*domain.PublicVote, error)
	HashExists(ctx context.Context, electionID uuid.UUID, ballotHash string) (bool, error)
}

// AttendanceRepository reads the participation trail. Quorum and turnout are
// derived from these counts, never from ballot rows.
type AttendanceRepository interface {
	CountByElection(ctx context.Context, electionID uuid.UUID) (int, error)
	// WeightByElection sums the current weights of voters with an attendance
	// entry, for weighted quorums.
	WeightByElection(ctx context.Context, electionID uuid.UUID) (float64, error)
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]*domain.AttendanceEntry, error)
}

type CastVoteInput struct {
	Token     string
	Selection domain.Selection
	IP        string
	UserAgent string
}

type CastService interface {
	CastVote(ctx context.Context, input CastVoteInput) (*domain.Receipt, error)
	VerifyReceipt(ctx context.Context, electionID uuid.UUID, ballotHash string) (bool, error)
}
