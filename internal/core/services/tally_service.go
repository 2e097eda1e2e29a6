package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/ballotseal"
	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type tallyService struct {
	electionRepo   ports.ElectionRepository
	voterRepo      ports.VoterRepository
	ballotRepo     ports.BallotRepository
	attendanceRepo ports.AttendanceRepository
	sealer         *ballotseal.Sealer
}

func NewTallyService(
	electionRepo ports.ElectionRepository,
	voterRepo ports.VoterRepository,
	ballotRepo ports.BallotRepository,
	attendanceRepo ports.AttendanceRepository,
	sealer *ballotseal.Sealer,
) ports.TallyService {
	return &tallyService{
		electionRepo:   electionRepo,
		voterRepo:      voterRepo,
		ballotRepo:     ballotRepo,
		attendanceRepo: attendanceRepo,
		sealer:         sealer,
	}
}

type optionTotals struct {
	votes  int64
	weight float64
}

// Tally streams every stored vote, opens sealed ballots, and accumulates
// per-option totals. It is a pure read and safe to run while casting is still
// in progress.
func (s *tallyService) Tally(ctx context.Context, electionID uuid.UUID) ([]domain.OptionResult, error) {
	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election.DeferredCounting && election.Phase != domain.PhaseClosed {
		return nil, domain.ErrResultsWithheld
	}

	totals := make(map[uuid.UUID]*optionTotals, len(election.Options))
	for _, opt := range election.Options {
		totals[opt.ID] = &optionTotals{}
	}

	if err := s.accumulateSecret(ctx, election, totals); err != nil {
		return nil, err
	}
	if err := s.accumulatePublic(ctx, election, totals); err != nil {
		return nil, err
	}

	var grandTotal float64
	for _, t := range totals {
		if election.IsWeighted {
			grandTotal += t.weight
		} else {
			grandTotal += float64(t.votes)
		}
	}

	results := make([]domain.OptionResult, 0, len(election.Options))
	for _, opt := range election.Options {
		t := totals[opt.ID]

		share := float64(t.votes)
		if election.IsWeighted {
			share = t.weight
		}

		percentage := 0.0
		if grandTotal > 0 {
			percentage = round2(share / grandTotal * 100)
		}

		results = append(results, domain.OptionResult{
			Option:     opt,
			Votes:      t.votes,
			Weight:     t.weight,
			Percentage: percentage,
		})
	}

	return results, nil
}

func (s *tallyService) Turnout(ctx context.Context, electionID uuid.UUID) (*domain.Turnout, error) {
	if _, err := s.electionRepo.GetByID(ctx, electionID); err != nil {
		return nil, err
	}

	attended, err := s.attendanceRepo.CountByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	eligible, err := s.voterRepo.CountByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	turnout := &domain.Turnout{Eligible: eligible, Attended: attended}
	if eligible > 0 {
		turnout.Percentage = round2(100 * float64(attended) / float64(eligible))
	}
	return turnout, nil
}

func (s *tallyService) accumulateSecret(ctx context.Context, election *domain.Election, totals map[uuid.UUID]*optionTotals) error {
	ballots, err := s.ballotRepo.ListSecret(ctx, election.ID)
	if err != nil {
		return err
	}

	for _, ballot := range ballots {
		selection, err := s.sealer.Open(election.ID, ballot.EncryptedVote)
		if err != nil {
			return err
		}
		accumulate(totals, selection, ballot.VoterWeight)
	}
	return nil
}

func (s *tallyService) accumulatePublic(ctx context.Context, election *domain.Election, totals map[uuid.UUID]*optionTotals) error {
	votes, err := s.ballotRepo.ListPublic(ctx, election.ID)
	if err != nil {
		return err
	}

	for _, vote := range votes {
		weight := 1.0
		if election.IsWeighted {
			voter, err := s.voterRepo.GetByID(ctx, vote.VoterID)
			if err != nil {
				return err
			}
			weight = voter.Weight
		}
		accumulate(totals, vote.Selection, weight)
	}
	return nil
}

func accumulate(totals map[uuid.UUID]*optionTotals, selection domain.Selection, weight float64) {
	for _, optionID := range selection.OptionIDs {
		t, ok := totals[optionID]
		if !ok {
			// Option was removed while the election was still draft and a
			// stale ballot references it; skip rather than fail the tally.
			continue
		}
		t.votes++
		t.weight += weight
	}
}
