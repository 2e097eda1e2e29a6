package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ballot is a sealed vote from a secret election. It deliberately carries no
// voter reference: once cast, a ballot row cannot be mapped back to the voter
// who produced it. VoterWeight is a snapshot taken at cast time so later voter
// edits never change a recorded ballot.
type Ballot struct {
	ID            uuid.UUID `json:"id"`
	ElectionID    uuid.UUID `json:"election_id"`
	BallotHash    string    `json:"ballot_hash"`
	EncryptedVote []byte    `json:"-"`
	VoterWeight   float64   `json:"voter_weight"`
	CastAt        time.Time `json:"cast_at"`
	IP            string    `json:"-"`
}

// PublicVote is the non-anonymous counterpart: the choice is stored in the
// clear and linked to the voter who made it.
type PublicVote struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	VoterID    uuid.UUID `json:"voter_id"`
	Selection  Selection `json:"selection"`
	CastAt     time.Time `json:"cast_at"`
}

// AttendanceEntry proves a voter participated without carrying any vote
// content. Turnout and quorum are computed from these rows alone.
type AttendanceEntry struct {
	ID         uuid.UUID `json:"id"`
	ElectionID uuid.UUID `json:"election_id"`
	VoterID    uuid.UUID `json:"voter_id"`
	MarkedAt   time.Time `json:"marked_at"`
	IP         string    `json:"-"`
	UserAgent  string    `json:"-"`
}

type Observer struct {
	ID            uuid.UUID `json:"id"`
	ElectionID    uuid.UUID `json:"election_id"`
	AccessToken   string    `json:"-"`
	CanSeeResults bool      `json:"can_see_results"`
	CanSeeTurnout bool      `json:"can_see_turnout"`
	CreatedAt     time.Time `json:"created_at"`
}

// Receipt is returned to the voter after a successful cast. For secret
// elections BallotHash lets the voter later verify their ballot was recorded
// without anyone learning which ballot is theirs.
type Receipt struct {
	ElectionID uuid.UUID `json:"election_id"`
	BallotHash string    `json:"ballot_hash,omitempty"`
	CastAt     time.Time `json:"cast_at"`
}
