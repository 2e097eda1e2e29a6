package services

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type quorumService struct {
	electionRepo   ports.ElectionRepository
	voterRepo      ports.VoterRepository
	attendanceRepo ports.AttendanceRepository
}

func NewQuorumService(
	electionRepo ports.ElectionRepository,
	voterRepo ports.VoterRepository,
	attendanceRepo ports.AttendanceRepository,
) ports.QuorumService {
	return &quorumService{
		electionRepo:   electionRepo,
		voterRepo:      voterRepo,
		attendanceRepo: attendanceRepo,
	}
}

// Status derives participation from attendance entries alone. Ballot rows are
// never consulted, so quorum stays computable without touching vote content.
func (s *quorumService) Status(ctx context.Context, electionID uuid.UUID) (*domain.QuorumStatus, error) {
	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	status := &domain.QuorumStatus{
		Type:     election.QuorumType,
		Required: election.QuorumRequired,
	}

	switch election.QuorumType {
	case domain.QuorumNone:
		status.Reached = true
		return status, nil

	case domain.QuorumPercentage:
		attended, err := s.attendanceRepo.CountByElection(ctx, electionID)
		if err != nil {
			return nil, err
		}
		eligible, err := s.voterRepo.CountByElection(ctx, electionID)
		if err != nil {
			return nil, err
		}
		if eligible > 0 {
			status.Current = round2(100 * float64(attended) / float64(eligible))
		}

	case domain.QuorumAbsolute:
		attended, err := s.attendanceRepo.CountByElection(ctx, electionID)
		if err != nil {
			return nil, err
		}
		status.Current = float64(attended)

	case domain.QuorumWeighted:
		weight, err := s.attendanceRepo.WeightByElection(ctx, electionID)
		if err != nil {
			return nil, err
		}
		status.Current = weight
	}

	status.Reached = status.Current >= status.Required
	return status, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
