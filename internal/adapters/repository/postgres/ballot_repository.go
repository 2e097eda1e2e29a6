package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotRepository {
	return &ballotRepository{
		db: db,
	}
}

// AppendSecret flips the voter's has_voted flag and appends the sealed ballot
// plus the attendance entry in one transaction. The UPDATE's
// `has_voted = FALSE` predicate is the compare-and-swap: under concurrent
// casts for the same voter, exactly one transaction updates a row; the others
// see zero rows affected and roll back with ErrAlreadyVoted.
func (r *ballotRepository) AppendSecret(ctx context.Context, voterID uuid.UUID, ballot *domain.Ballot, entry *domain.AttendanceEntry) error {
	return r.append(ctx, voterID, ballot.CastAt, func(tx *sql.Tx) error {
		query := `
			INSERT INTO ballots (id, election_id, ballot_hash, encrypted_vote, voter_weight, cast_at, ip)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			ballot.ID, ballot.ElectionID, ballot.BallotHash, ballot.EncryptedVote,
			ballot.VoterWeight, ballot.CastAt, ballot.IP,
		)
		if err != nil {
			return storeErr("failed to insert ballot", err)
		}
		return nil
	}, entry)
}

func (r *ballotRepository) AppendPublic(ctx context.Context, voterID uuid.UUID, vote *domain.PublicVote, entry *domain.AttendanceEntry) error {
	return r.append(ctx, voterID, vote.CastAt, func(tx *sql.Tx) error {
		voteData, err := json.Marshal(vote.Selection)
		if err != nil {
			return domain.ErrInvalidVoteData
		}

		query := `
			INSERT INTO public_votes (id, election_id, voter_id, vote_data, cast_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, query,
			vote.ID, vote.ElectionID, vote.VoterID, voteData, vote.CastAt,
		); err != nil {
			return storeErr("failed to insert public vote", err)
		}
		return nil
	}, entry)
}

func (r *ballotRepository) append(ctx context.Context, voterID uuid.UUID, castAt any, insertVote func(*sql.Tx) error, entry *domain.AttendanceEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE voters SET has_voted = TRUE, voted_at = $2
		WHERE id = $1 AND has_voted = FALSE
	`, voterID, castAt)
	if err != nil {
		return storeErr("failed to mark voter", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to read rows affected", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyVoted
	}

	if err := insertVote(tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO attendance_entries (id, election_id, voter_id, marked_at, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.ElectionID, entry.VoterID, entry.MarkedAt, entry.IP, entry.UserAgent); err != nil {
		return storeErr("failed to insert attendance entry", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}
	return nil
}

func (r *ballotRepository) ListSecret(ctx context.Context, electionID uuid.UUID) ([]*domain.Ballot, error) {
	query := `
		SELECT id, election_id, ballot_hash, encrypted_vote, voter_weight, cast_at, ip
		FROM ballots
		WHERE election_id = $1
		ORDER BY cast_at
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storeErr("failed to list ballots", err)
	}
	defer rows.Close()

	var ballots []*domain.Ballot
	for rows.Next() {
		var ballot domain.Ballot
		if err := rows.Scan(
			&ballot.ID, &ballot.ElectionID, &ballot.BallotHash, &ballot.EncryptedVote,
			&ballot.VoterWeight, &ballot.CastAt, &ballot.IP,
		); err != nil {
			return nil, storeErr("failed to scan ballot", err)
		}
		ballots = append(ballots, &ballot)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating ballots", err)
	}
	return ballots, nil
}

func (r *ballotRepository) ListPublic(ctx context.Context, electionID uuid.UUID) ([]*domain.PublicVote, error) {
	query := `
		SELECT id, election_id, voter_id, vote_data, cast_at
		FROM public_votes
		WHERE election_id = $1
		ORDER BY cast_at
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storeErr("failed to list public votes", err)
	}
	defer rows.Close()

	var votes []*domain.PublicVote
	for rows.Next() {
		var vote domain.PublicVote
		var voteData []byte
		if err := rows.Scan(&vote.ID, &vote.ElectionID, &vote.VoterID, &voteData, &vote.CastAt); err != nil {
			return nil, storeErr("failed to scan public vote", err)
		}
		if err := json.Unmarshal(voteData, &vote.Selection); err != nil {
			return nil, storeErr("failed to decode vote data", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating public votes", err)
	}
	return votes, nil
}

func (r *ballotRepository) HashExists(ctx context.Context, electionID uuid.UUID, ballotHash string) (bool, error) {
	query := `SELECT 1 FROM ballots WHERE election_id = $1 AND ballot_hash = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, electionID, ballotHash).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, storeErr("failed to check ballot hash", err)
	}
	return true, nil
}
