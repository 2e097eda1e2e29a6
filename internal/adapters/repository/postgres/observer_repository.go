package postgres

import (
	"context"
	"database/sql"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type observerRepository struct {
	db *sql.DB
}

func NewObserverRepository(db *sql.DB) ports.ObserverRepository {
	return &observerRepository{
		db: db,
	}
}

func (r *observerRepository) Save(ctx context.Context, observer *domain.Observer) error {
	query := `
		INSERT INTO observers (id, election_id, access_token, can_see_results, can_see_turnout)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		observer.ID, observer.ElectionID, observer.AccessToken,
		observer.CanSeeResults, observer.CanSeeTurnout,
	)
	if err != nil {
		return storeErr("failed to insert observer", err)
	}
	return nil
}

func (r *observerRepository) GetByToken(ctx context.Context, accessToken string) (*domain.Observer, error) {
	query := `
		SELECT id, election_id, access_token, can_see_results, can_see_turnout, created_at
		FROM observers
		WHERE access_token = $1
	`
	var observer domain.Observer
	err := r.db.QueryRowContext(ctx, query, accessToken).Scan(
		&observer.ID, &observer.ElectionID, &observer.AccessToken,
		&observer.CanSeeResults, &observer.CanSeeTurnout, &observer.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrObserverNotFound
		}
		return nil, storeErr("failed to get observer", err)
	}
	return &observer, nil
}
