package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type voterService struct {
	electionRepo ports.ElectionRepository
	voterRepo    ports.VoterRepository
	emitter      ports.EventEmitter
}

func NewVoterService(
	electionRepo ports.ElectionRepository,
	voterRepo ports.VoterRepository,
	emitter ports.EventEmitter,
) ports.VoterService {
	return &voterService{
		electionRepo: electionRepo,
		voterRepo:    voterRepo,
		emitter:      emitter,
	}
}

func (s *voterService) AddVoter(ctx context.Context, input ports.AddVoterInput) (*domain.Voter, error) {
	if input.Email == "" {
		return nil, errors.New("email is required")
	}
	if input.Weight == 0 {
		input.Weight = 1.0
	}
	if input.Weight < 0 {
		return nil, errors.New("weight must be positive")
	}

	election, err := s.electionRepo.GetByID(ctx, input.ElectionID)
	if err != nil {
		return nil, err
	}
	if election.Phase != domain.PhaseDraft {
		return nil, domain.ErrElectionLocked
	}

	if election.MaxVoters > 0 {
		count, err := s.voterRepo.CountByElection(ctx, input.ElectionID)
		if err != nil {
			return nil, err
		}
		if count >= election.MaxVoters {
			return nil, domain.ErrVoterLimitReached
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	voter := &domain.Voter{
		ID:         uuid.New(),
		ElectionID: input.ElectionID,
		Email:      input.Email,
		Name:       input.Name,
		Weight:     input.Weight,
		Token:      token,
		CreatedAt:  now,
	}

	if err := s.voterRepo.Save(ctx, voter); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, domain.Event{
		ElectionID: input.ElectionID,
		Type:       domain.EventVoterJoined,
		OccurredAt: now,
	})

	return voter, nil
}

func (s *voterService) ResolveToken(ctx context.Context, token string) (*domain.Voter, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	voter, err := s.voterRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	election, err := s.electionRepo.GetByID(ctx, voter.ElectionID)
	if err != nil {
		return nil, err
	}
	if election.Phase != domain.PhaseActive {
		return nil, domain.ErrElectionNotActive
	}

	return voter, nil
}

func (s *voterService) UpdateVoter(ctx context.Context, id uuid.UUID, input ports.UpdateVoterInput) (*domain.Voter, error) {
	voter, err := s.modifiableVoter(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		voter.Name = input.Name
	}
	if input.Weight > 0 {
		voter.Weight = input.Weight
	}

	if err := s.voterRepo.Update(ctx, voter); err != nil {
		return nil, err
	}
	return voter, nil
}

func (s *voterService) RemoveVoter(ctx context.Context, id uuid.UUID) error {
	if _, err := s.modifiableVoter(ctx, id); err != nil {
		return err
	}
	return s.voterRepo.Delete(ctx, id)
}

func (s *voterService) ResetTokens(ctx context.Context, electionID uuid.UUID) (int, error) {
	election, err := s.electionRepo.GetByID(ctx, electionID)
	if err != nil {
		return 0, err
	}
	if election.Phase != domain.PhaseDraft {
		return 0, domain.ErrCannotModifyStarted
	}

	voters, err := s.voterRepo.ListByElection(ctx, electionID)
	if err != nil {
		return 0, err
	}

	for _, voter := range voters {
		token, err := generateToken()
		if err != nil {
			return 0, err
		}
		voter.Token = token
		if err := s.voterRepo.Update(ctx, voter); err != nil {
			return 0, err
		}
	}

	return len(voters), nil
}

func (s *voterService) ListVoters(ctx context.Context, electionID uuid.UUID) ([]*domain.Voter, error) {
	return s.voterRepo.ListByElection(ctx, electionID)
}

func (s *voterService) modifiableVoter(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	voter, err := s.voterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	election, err := s.electionRepo.GetByID(ctx, voter.ElectionID)
	if err != nil {
		return nil, err
	}
	if election.Phase != domain.PhaseDraft {
		return nil, domain.ErrCannotModifyStarted
	}

	return voter, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
