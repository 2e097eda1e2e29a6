package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func electionWithOptions(votingType VotingType, count int) *Election {
	e := &Election{ID: uuid.New(), VotingType: votingType}
	for i := 0; i < count; i++ {
		e.Options = append(e.Options, Option{ID: uuid.New(), ElectionID: e.ID, Position: i})
	}
	return e
}

func TestSelectionValidate(t *testing.T) {
	single := electionWithOptions(VotingSingleChoice, 3)
	multi := electionWithOptions(VotingMultiChoice, 3)

	tests := []struct {
		name     string
		election *Election
		ids      []uuid.UUID
		wantErr  error
	}{
		{
			name:     "single choice accepts one option",
			election: single,
			ids:      []uuid.UUID{single.Options[0].ID},
		},
		{
			name:     "single choice rejects two options",
			election: single,
			ids:      []uuid.UUID{single.Options[0].ID, single.Options[1].ID},
			wantErr:  ErrTooManyChoices,
		},
		{
			name:     "empty selection",
			election: single,
			ids:      nil,
			wantErr:  ErrInsufficientChoices,
		},
		{
			name:     "unknown option id",
			election: single,
			ids:      []uuid.UUID{uuid.New()},
			wantErr:  ErrInvalidVoteData,
		},
		{
			name:     "multi choice accepts a set",
			election: multi,
			ids:      []uuid.UUID{multi.Options[0].ID, multi.Options[2].ID},
		},
		{
			name:     "multi choice rejects duplicates",
			election: multi,
			ids:      []uuid.UUID{multi.Options[1].ID, multi.Options[1].ID},
			wantErr:  ErrDuplicateChoices,
		},
		{
			name:     "multi choice rejects more picks than options",
			election: multi,
			ids: []uuid.UUID{
				multi.Options[0].ID, multi.Options[1].ID,
				multi.Options[2].ID, uuid.New(),
			},
			wantErr: ErrTooManyChoices,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Selection{OptionIDs: tt.ids}.Validate(tt.election)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCanonicalIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	first, err := Selection{OptionIDs: []uuid.UUID{a, b}}.Canonical()
	require.NoError(t, err)
	second, err := Selection{OptionIDs: []uuid.UUID{b, a}}.Canonical()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCanonicalRoundTrip(t *testing.T) {
	original := Selection{OptionIDs: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}

	payload, err := original.Canonical()
	require.NoError(t, err)

	decoded, err := SelectionFromCanonical(payload)
	require.NoError(t, err)
	assert.ElementsMatch(t, original.OptionIDs, decoded.OptionIDs)
}

func TestSelectionFromCanonicalRejectsGarbage(t *testing.T) {
	_, err := SelectionFromCanonical([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidVoteData)

	_, err = SelectionFromCanonical([]byte(`["not-a-uuid"]`))
	assert.ErrorIs(t, err, ErrInvalidVoteData)
}
