package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/ballotseal"
	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type castService struct {
	electionRepo ports.ElectionRepository
	voters       ports.VoterService
	ballotRepo   ports.BallotRepository
	quorum       ports.QuorumService
	sealer       *ballotseal.Sealer
	emitter      ports.EventEmitter
}

func NewCastService(
	electionRepo ports.ElectionRepository,
	voters ports.VoterService,
	ballotRepo ports.BallotRepository,
	quorum ports.QuorumService,
	sealer *ballotseal.Sealer,
	emitter ports.EventEmitter,
) ports.CastService {
	return &castService{
		electionRepo: electionRepo,
		voters:       voters,
		ballotRepo:   ballotRepo,
		quorum:       quorum,
		sealer:       sealer,
		emitter:      emitter,
	}
}

// CastVote runs the at-most-once casting protocol: resolve the token, reject
// repeats, validate the selection, then atomically flip has_voted and append
// the ballot plus the attendance entry. The has_voted compare-and-swap inside
// the repository is the single serialization point; of N concurrent casts
// with the same token exactly one reaches the store.
func (s *castService) CastVote(ctx context.Context, input ports.CastVoteInput) (*domain.Receipt, error) {
	voter, err := s.voters.ResolveToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	// Fast path: a repeated cast is rejected without touching the store.
	// The CAS below still guards the concurrent case.
	if voter.HasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	election, err := s.electionRepo.GetByID(ctx, voter.ElectionID)
	if err != nil {
		return nil, err
	}

	if err := input.Selection.Validate(election); err != nil {
		return nil, err
	}

	reachedBefore, err := s.quorumReached(ctx, election)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &domain.AttendanceEntry{
		ID:         uuid.New(),
		ElectionID: election.ID,
		VoterID:    voter.ID,
		MarkedAt:   now,
		IP:         input.IP,
		UserAgent:  input.UserAgent,
	}

	receipt := &domain.Receipt{ElectionID: election.ID, CastAt: now}

	if election.IsSecret {
		sealed, err := s.sealer.Seal(election.ID, input.Selection)
		if err != nil {
			return nil, err
		}

		ballot := &domain.Ballot{
			ID:            uuid.New(),
			ElectionID:    election.ID,
			BallotHash:    sealed.Hash,
			EncryptedVote: sealed.Ciphertext,
			VoterWeight:   voter.Weight,
			CastAt:        now,
			IP:            input.IP,
		}
		if err := s.ballotRepo.AppendSecret(ctx, voter.ID, ballot, entry); err != nil {
			return nil, err
		}
		receipt.BallotHash = sealed.Hash
	} else {
		vote := &domain.PublicVote{
			ID:         uuid.New(),
			ElectionID: election.ID,
			VoterID:    voter.ID,
			Selection:  input.Selection,
			CastAt:     now,
		}
		if err := s.ballotRepo.AppendPublic(ctx, voter.ID, vote, entry); err != nil {
			return nil, err
		}
	}

	s.emitter.Emit(ctx, domain.Event{
		ElectionID: election.ID,
		Type:       domain.EventVoteCast,
		OccurredAt: now,
		Payload:    map[string]any{"delta": 1},
	})

	reachedAfter, err := s.quorumReached(ctx, election)
	if err == nil && !reachedBefore && reachedAfter {
		s.emitter.Emit(ctx, domain.Event{
			ElectionID: election.ID,
			Type:       domain.EventQuorumReached,
			OccurredAt: now,
		})
	}

	return receipt, nil
}

func (s *castService) VerifyReceipt(ctx context.Context, electionID uuid.UUID, ballotHash string) (bool, error) {
	if ballotHash == "" {
		return false, nil
	}
	return s.ballotRepo.HashExists(ctx, electionID, ballotHash)
}

func (s *castService) quorumReached(ctx context.Context, election *domain.Election) (bool, error) {
	if election.QuorumType == domain.QuorumNone {
		// Nothing to announce: a no-quorum election is trivially reached.
		return true, nil
	}
	status, err := s.quorum.Status(ctx, election.ID)
	if err != nil {
		return false, err
	}
	return status.Reached, nil
}
