package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type electionRepository struct {
	db *sql.DB
}

func NewElectionRepository(db *sql.DB) ports.ElectionRepository {
	return &electionRepository{
		db: db,
	}
}

func (r *electionRepository) Save(ctx context.Context, election *domain.Election) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	queryElection := `
		INSERT INTO elections (
			id, title, description, voting_type, is_secret, is_weighted,
			allow_anonymity, phase, deferred_counting, quorum_type,
			quorum_required, max_voters, scheduled_start, scheduled_end
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.ExecContext(ctx, queryElection,
		election.ID, election.Title, election.Description, election.VotingType,
		election.IsSecret, election.IsWeighted, election.AllowAnonymity,
		election.Phase, election.DeferredCounting, election.QuorumType,
		election.QuorumRequired, election.MaxVoters,
		election.ScheduledStart, election.ScheduledEnd,
	)
	if err != nil {
		return storeErr("failed to insert election", err)
	}

	if err := insertOptions(ctx, tx, election.Options); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}

	return nil
}

func (r *electionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	queryElection := `
		SELECT id, title, description, voting_type, is_secret, is_weighted,
		       allow_anonymity, phase, deferred_counting, quorum_type,
		       quorum_required, max_voters, scheduled_start, scheduled_end,
		       actual_start, actual_end, created_at
		FROM elections
		WHERE id = $1
	`

	var election domain.Election
	err := r.db.QueryRowContext(ctx, queryElection, id).Scan(
		&election.ID, &election.Title, &election.Description, &election.VotingType,
		&election.IsSecret, &election.IsWeighted, &election.AllowAnonymity,
		&election.Phase, &election.DeferredCounting, &election.QuorumType,
		&election.QuorumRequired, &election.MaxVoters,
		&election.ScheduledStart, &election.ScheduledEnd,
		&election.ActualStart, &election.ActualEnd, &election.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrElectionNotFound
		}
		return nil, storeErr("failed to get election", err)
	}

	options, err := r.fetchOptions(ctx, election.ID)
	if err != nil {
		return nil, err
	}
	election.Options = options

	return &election, nil
}

func (r *electionRepository) UpdateDraft(ctx context.Context, election *domain.Election) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE elections
		SET title = $2, description = $3
		WHERE id = $1 AND phase = 'draft'
	`
	res, err := tx.ExecContext(ctx, query, election.ID, election.Title, election.Description)
	if err != nil {
		return storeErr("failed to update election", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to read rows affected", err)
	}
	if affected == 0 {
		return domain.ErrElectionLocked
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE election_id = $1`, election.ID); err != nil {
		return storeErr("failed to clear options", err)
	}
	if err := insertOptions(ctx, tx, election.Options); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}

	return nil
}

// TransitionPhase is the compare-and-swap on the phase column: the WHERE
// clause on the old phase makes sure only one of any concurrent transitions
// takes effect.
func (r *electionRepository) TransitionPhase(ctx context.Context, id uuid.UUID, from, to domain.Phase, at time.Time) error {
	var query string
	switch to {
	case domain.PhaseActive:
		query = `UPDATE elections SET phase = $3, actual_start = $4 WHERE id = $1 AND phase = $2`
	case domain.PhaseClosed:
		query = `UPDATE elections SET phase = $3, actual_end = $4 WHERE id = $1 AND phase = $2`
	default:
		return domain.ErrInvalidTransition
	}

	res, err := r.db.ExecContext(ctx, query, id, from, to, at)
	if err != nil {
		return storeErr("failed to transition phase", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to read rows affected", err)
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *electionRepository) DueTransitions(ctx context.Context, now time.Time) ([]ports.DueTransition, error) {
	query := `
		SELECT id, 'start' AS kind FROM elections
		WHERE phase = 'draft' AND scheduled_start IS NOT NULL AND scheduled_start <= $1
		UNION ALL
		SELECT id, 'close' AS kind FROM elections
		WHERE phase = 'active' AND scheduled_end IS NOT NULL AND scheduled_end <= $1
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, storeErr("failed to scan due transitions", err)
	}
	defer rows.Close()

	var due []ports.DueTransition
	for rows.Next() {
		var transition ports.DueTransition
		if err := rows.Scan(&transition.ElectionID, &transition.Kind); err != nil {
			return nil, storeErr("failed to scan due transition", err)
		}
		due = append(due, transition)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating due transitions", err)
	}
	return due, nil
}

func (r *electionRepository) SaveAudit(ctx context.Context, audit *domain.TransitionAudit) error {
	query := `
		INSERT INTO transition_audit (id, election_id, kind, trigger, forced, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		audit.ID, audit.ElectionID, audit.Kind, audit.Trigger, audit.Forced, audit.OccurredAt,
	)
	if err != nil {
		return storeErr("failed to insert audit", err)
	}
	return nil
}

func (r *electionRepository) fetchOptions(ctx context.Context, electionID uuid.UUID) ([]domain.Option, error) {
	query := `
		SELECT id, election_id, text, position, candidate, created_at
		FROM options
		WHERE election_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storeErr("failed to get options", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.ElectionID, &opt.Text, &opt.Position, &opt.Candidate, &opt.CreatedAt); err != nil {
			return nil, storeErr("failed to scan option", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating options", err)
	}
	return options, nil
}

func insertOptions(ctx context.Context, tx *sql.Tx, options []domain.Option) error {
	query := `
		INSERT INTO options (id, election_id, text, position, candidate)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return storeErr("failed to prepare option statement", err)
	}
	defer stmt.Close()

	for _, opt := range options {
		if _, err := stmt.ExecContext(ctx, opt.ID, opt.ElectionID, opt.Text, opt.Position, opt.Candidate); err != nil {
			return storeErr("failed to insert option", err)
		}
	}
	return nil
}

// storeErr tags infrastructure failures with ErrStorageUnavailable so callers
// can tell retryable storage trouble from domain outcomes.
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageUnavailable, err)
}
