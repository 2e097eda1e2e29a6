package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type attendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) ports.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}

func (r *attendanceRepository) CountByElection(ctx context.Context, electionID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_entries WHERE election_id = $1`, electionID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("failed to count attendance", err)
	}
	return count, nil
}

func (r *attendanceRepository) WeightByElection(ctx context.Context, electionID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(v.weight), 0)
		FROM attendance_entries a
		JOIN voters v ON v.id = a.voter_id
		WHERE a.election_id = $1
	`
	var weight float64
	if err := r.db.QueryRowContext(ctx, query, electionID).Scan(&weight); err != nil {
		return 0, storeErr("failed to sum attended weight", err)
	}
	return weight, nil
}

func (r *attendanceRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]*domain.AttendanceEntry, error) {
	query := `
		SELECT id, election_id, voter_id, marked_at, ip, user_agent
		FROM attendance_entries
		WHERE election_id = $1
		ORDER BY marked_at
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storeErr("failed to list attendance", err)
	}
	defer rows.Close()

	var entries []*domain.AttendanceEntry
	for rows.Next() {
		var entry domain.AttendanceEntry
		if err := rows.Scan(
			&entry.ID, &entry.ElectionID, &entry.VoterID,
			&entry.MarkedAt, &entry.IP, &entry.UserAgent,
		); err != nil {
			return nil, storeErr("failed to scan attendance entry", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("error iterating attendance", err)
	}
	return entries, nil
}
