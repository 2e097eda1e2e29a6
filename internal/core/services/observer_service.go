package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type observerService struct {
	electionRepo ports.ElectionRepository
	observerRepo ports.ObserverRepository
}

func NewObserverService(electionRepo ports.ElectionRepository, observerRepo ports.ObserverRepository) ports.ObserverService {
	return &observerService{
		electionRepo: electionRepo,
		observerRepo: observerRepo,
	}
}

func (s *observerService) Grant(ctx context.Context, input ports.GrantObserverInput) (*domain.Observer, error) {
	if _, err := s.electionRepo.GetByID(ctx, input.ElectionID); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	observer := &domain.Observer{
		ID:            uuid.New(),
		ElectionID:    input.ElectionID,
		AccessToken:   token,
		CanSeeResults: input.CanSeeResults,
		CanSeeTurnout: input.CanSeeTurnout,
		CreatedAt:     time.Now(),
	}

	if err := s.observerRepo.Save(ctx, observer); err != nil {
		return nil, err
	}
	return observer, nil
}

func (s *observerService) Resolve(ctx context.Context, accessToken string) (*domain.Observer, error) {
	if accessToken == "" {
		return nil, domain.ErrObserverNotFound
	}
	return s.observerRepo.GetByToken(ctx, accessToken)
}
