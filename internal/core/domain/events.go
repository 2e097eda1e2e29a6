package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventVoterJoined     EventType = "voter_joined"
	EventVoteCast        EventType = "vote_cast"
	EventElectionStarted EventType = "election_started"
	EventElectionClosed  EventType = "election_closed"
	EventQuorumReached   EventType = "quorum_reached"
)

// Event is handed synchronously to the notification collaborator after the
// triggering state change committed. Payload carries small count deltas, never
// ballot content.
type Event struct {
	ElectionID uuid.UUID      `json:"election_id"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
