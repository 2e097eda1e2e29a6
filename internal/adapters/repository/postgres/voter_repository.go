package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

const uniqueViolation = "23505"

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &voterRepository{
		db: db,
	}
}

func (r *voterRepository) Save(ctx context.Context, voter *domain.Voter) error {
	query := `
		INSERT INTO voters (id, election_id, email, name, weight, token)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		voter.ID, voter.ElectionID, voter.Email, voter.Name, voter.Weight, voter.Token,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateVoter
		}
		return storeErr("failed to insert voter", err)
	}
	return nil
}

func (r *voterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	voter, err := r.get(ctx, `WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("voter not found")
		}
		return nil, err
	}
	return voter, nil
}

func (r *voterRepository) GetByToken(ctx context.Context, token string) (*domain.Voter, error) {
	voter, err := r.get(ctx, `WHERE token = $1`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return voter, nil
}

func (r *voterRepository) get(ctx context.Context, where string, arg any) (*domain.Voter, error) {
	query := `
		SELECT id, election_id, email, name, weight, token, has_voted, voted_at, created_at
		FROM voters ` + where

	var voter domain.Voter
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&voter.ID, &voter.ElectionID, &voter.Email, &voter.Name, &voter.Weight,
		&voter.Token, &voter.HasVoted, &voter.VotedAt, &voter.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, storeErr("failed to get voter", err)
	}
	return &voter, nil
}

func (r *voterRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]*domain.Voter, error) {
	query := `
		SELECT id, election_id, email, name, weight, token, has_voted, voted_at, created_at
		FROM voters
		WHERE election_id = $1
		ORDER BY email
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storeErr("failed to list voters", err)
	}
	defer rows.Close()

	var voters []*domain.Voter
	for rows.Next() {
		var voter domain.Voter
		if err := rows.Scan(
			&voter.ID, &voter.ElectionID, &voter.Email, &voter.Name, &voter.Weight,
			&voter.Token, &voter.HasVoted, &voter.VotedAt, &voter.CreatedAt,
		); err != nil {
			return nil, storeErr("failed to scan voter", err)
		}
		voters = append(voters, &voter)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating voters", err)
	}
	return voters, nil
}

func (r *voterRepository) CountByElection(ctx context.Context, electionID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM voters WHERE election_id = $1`, electionID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("failed to count voters", err)
	}
	return count, nil
}

func (r *voterRepository) Update(ctx context.Context, voter *domain.Voter) error {
	query := `
		UPDATE voters SET name = $2, weight = $3, token = $4 WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, voter.ID, voter.Name, voter.Weight, voter.Token)
	if err != nil {
		return storeErr("failed to update voter", err)
	}
	return nil
}

func (r *voterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM voters WHERE id = $1`, id)
	if err != nil {
		return storeErr("failed to delete voter", err)
	}
	return nil
}
