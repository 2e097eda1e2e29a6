package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
)

type ObserverRepository interface {
	Save(ctx context.Context, observer *domain.Observer) error
	GetByToken(ctx context.Context, accessToken string) (*domain.Observer, error)
}

type GrantObserverInput struct {
	ElectionID    uuid.UUID
	CanSeeResults bool
	CanSeeTurnout bool
}

type ObserverService interface {
	Grant(ctx context.Context, input GrantObserverInput) (*domain.Observer, error)
	Resolve(ctx context.Context, accessToken string) (*domain.Observer, error)
}
