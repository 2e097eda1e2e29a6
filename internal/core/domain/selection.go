package domain

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// Selection is the validated form of a vote payload. Exactly one option id
// for single-choice elections, a duplicate-free set for the multi-choice
// shapes. Weighted elections reuse either shape; the weight itself comes from
// the voter snapshot, never from the payload.
type Selection struct {
	OptionIDs []uuid.UUID `json:"option_ids"`
}

// Validate checks the selection shape against the election's voting type and
// option set. It must pass before anything is written.
func (s Selection) Validate(e *Election) error {
	if len(s.OptionIDs) == 0 {
		return ErrInsufficientChoices
	}

	switch e.VotingType {
	case VotingSingleChoice:
		if len(s.OptionIDs) > 1 {
			return ErrTooManyChoices
		}
	case VotingMultiChoice, VotingRankedApproval, VotingWeighted:
		if len(s.OptionIDs) > len(e.Options) {
			return ErrTooManyChoices
		}
	default:
		return ErrInvalidVoteData
	}

	seen := make(map[uuid.UUID]struct{}, len(s.OptionIDs))
	for _, id := range s.OptionIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateChoices
		}
		seen[id] = struct{}{}

		if !e.HasOption(id) {
			return ErrInvalidVoteData
		}
	}

	return nil
}

// Canonical returns a deterministic JSON encoding of the selection, used as
// the hash preimage and the sealed payload. Option ids are sorted so two
// identical choices always encode identically.
func (s Selection) Canonical() ([]byte, error) {
	ids := make([]string, len(s.OptionIDs))
	for i, id := range s.OptionIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

// SelectionFromCanonical decodes the payload produced by Canonical.
func SelectionFromCanonical(data []byte) (Selection, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return Selection{}, ErrInvalidVoteData
	}

	sel := Selection{OptionIDs: make([]uuid.UUID, 0, len(ids))}
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Selection{}, ErrInvalidVoteData
		}
		sel.OptionIDs = append(sel.OptionIDs, id)
	}
	return sel, nil
}
