package services

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

func TestCastVoteSecret(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	receipt := f.castFor(t, voters[0].Token, election.Options[0].ID)
	assert.NotEmpty(t, receipt.BallotHash)

	ballots, err := f.store.Ballots().ListSecret(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, ballots, 1)
	assert.Equal(t, receipt.BallotHash, ballots[0].BallotHash)
	assert.NotEmpty(t, ballots[0].EncryptedVote)

	entries, err := f.store.Attendance().ListByElection(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, voters[0].ID, entries[0].VoterID)

	assert.Len(t, f.events.OfType(domain.EventVoteCast), 1)
}

func TestCastVotePublic(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.IsSecret = false
	input.AllowAnonymity = false

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	receipt := f.castFor(t, voters[0].Token, election.Options[1].ID)
	assert.Empty(t, receipt.BallotHash)

	votes, err := f.store.Ballots().ListPublic(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, voters[0].ID, votes[0].VoterID)
	assert.Equal(t, []uuid.UUID{election.Options[1].ID}, votes[0].Selection.OptionIDs)
}

func TestCastVoteTwice(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)

	_, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token:     voters[0].Token,
		Selection: domain.Selection{OptionIDs: []uuid.UUID{election.Options[0].ID}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	ballots, err := f.store.Ballots().ListSecret(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Len(t, ballots, 1)
}

// N simultaneous casts with the same token must yield exactly one success;
// every loser gets ErrAlreadyVoted and no second ballot is ever written.
func TestCastVoteConcurrentSameToken(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	const attempts = 32

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = f.cast.CastVote(context.Background(), ports.CastVoteInput{
				Token:     voters[0].Token,
				Selection: domain.Selection{OptionIDs: []uuid.UUID{election.Options[0].ID}},
			})
		}(i)
	}
	wg.Wait()

	successes, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, domain.ErrAlreadyVoted):
			rejected++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)

	ballots, err := f.store.Ballots().ListSecret(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Len(t, ballots, 1)

	count, err := f.store.Attendance().CountByElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCastVoteSelectionValidation(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.VotingType = domain.VotingMultiChoice

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1, 1, 1, 1)
	f.startElection(t, election)

	optA := election.Options[0].ID
	optB := election.Options[1].ID

	tests := []struct {
		name    string
		options []uuid.UUID
		wantErr error
	}{
		{"empty", nil, domain.ErrInsufficientChoices},
		{"duplicate", []uuid.UUID{optA, optA}, domain.ErrDuplicateChoices},
		{"unknown option", []uuid.UUID{uuid.New()}, domain.ErrInvalidVoteData},
		{"more than option count", []uuid.UUID{optA, optB, uuid.New(), uuid.New()}, domain.ErrTooManyChoices},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
				Token:     voters[i].Token,
				Selection: domain.Selection{OptionIDs: tt.options},
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Failed validation must leave no side effects behind.
	count, err := f.store.Attendance().CountByElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCastVoteSingleChoiceRejectsMultiple(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	_, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token: voters[0].Token,
		Selection: domain.Selection{
			OptionIDs: []uuid.UUID{election.Options[0].ID, election.Options[1].ID},
		},
	})
	assert.ErrorIs(t, err, domain.ErrTooManyChoices)
}

func TestCastVoteClosedElection(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1, 1)
	f.startElection(t, election)
	f.castFor(t, voters[0].Token, election.Options[0].ID)
	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	_, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token:     voters[1].Token,
		Selection: domain.Selection{OptionIDs: []uuid.UUID{election.Options[0].ID}},
	})
	assert.ErrorIs(t, err, domain.ErrElectionNotActive)
}

func TestCastVoteEmitsQuorumReachedOnce(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.QuorumType = domain.QuorumAbsolute
	input.QuorumRequired = 2

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	assert.Empty(t, f.events.OfType(domain.EventQuorumReached))

	f.castFor(t, voters[1].Token, election.Options[0].ID)
	assert.Len(t, f.events.OfType(domain.EventQuorumReached), 1)

	f.castFor(t, voters[2].Token, election.Options[1].ID)
	assert.Len(t, f.events.OfType(domain.EventQuorumReached), 1)
}

func TestVerifyReceipt(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1)
	f.startElection(t, election)

	receipt := f.castFor(t, voters[0].Token, election.Options[0].ID)

	recorded, err := f.cast.VerifyReceipt(context.Background(), election.ID, receipt.BallotHash)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = f.cast.VerifyReceipt(context.Background(), election.ID, "deadbeef")
	require.NoError(t, err)
	assert.False(t, recorded)
}

// The ballot record must be structurally incapable of naming its voter: the
// attendance trail proves who participated, the ballot only what was chosen.
func TestBallotCarriesNoVoterReference(t *testing.T) {
	ballotType := reflect.TypeOf(domain.Ballot{})

	_, hasVoterID := ballotType.FieldByName("VoterID")
	assert.False(t, hasVoterID)

	voterIDType := reflect.TypeOf(uuid.UUID{})
	for i := 0; i < ballotType.NumField(); i++ {
		field := ballotType.Field(i)
		if field.Name == "ID" || field.Name == "ElectionID" {
			continue
		}
		assert.NotEqual(t, voterIDType, field.Type, "field %s could link a ballot to a voter", field.Name)
	}
}

// Attendance count equals the number of successful casts, and never exceeds
// the voter roll.
func TestAttendanceMatchesSuccessfulCasts(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1, 1, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	f.castFor(t, voters[1].Token, election.Options[1].ID)

	// A repeat and a garbage token must not move the count.
	_, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token:     voters[0].Token,
		Selection: domain.Selection{OptionIDs: []uuid.UUID{election.Options[0].ID}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	_, err = f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token:     "bogus",
		Selection: domain.Selection{OptionIDs: []uuid.UUID{election.Options[0].ID}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	count, err := f.store.Attendance().CountByElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.LessOrEqual(t, count, len(voters))
}
