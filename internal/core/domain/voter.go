package domain

import (
	"time"

	"github.com/google/uuid"
)

type Voter struct {
	ID         uuid.UUID  `json:"id"`
	ElectionID uuid.UUID  `json:"election_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	Weight     float64    `json:"weight"`
	Token      string     `json:"-"`
	HasVoted   bool       `json:"has_voted"`
	VotedAt    *time.Time `json:"voted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
