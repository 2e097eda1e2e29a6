package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

func TestTallySingleChoicePercentages(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	f.startElection(t, election)

	// 5 votes for A, 3 for B, 2 for C.
	optA, optB, optC := election.Options[0].ID, election.Options[1].ID, election.Options[2].ID
	for _, voter := range voters[:5] {
		f.castFor(t, voter.Token, optA)
	}
	for _, voter := range voters[5:8] {
		f.castFor(t, voter.Token, optB)
	}
	for _, voter := range voters[8:] {
		f.castFor(t, voter.Token, optC)
	}

	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(5), results[0].Votes)
	assert.Equal(t, 50.0, results[0].Percentage)
	assert.Equal(t, int64(3), results[1].Votes)
	assert.Equal(t, 30.0, results[1].Percentage)
	assert.Equal(t, int64(2), results[2].Votes)
	assert.Equal(t, 20.0, results[2].Percentage)
}

func TestTallyWeighted(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.VotingType = domain.VotingWeighted
	input.IsWeighted = true

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 2, 1, 1)
	f.startElection(t, election)

	// Weights [2, 1, 1] voting [A, A, B].
	optA, optB := election.Options[0].ID, election.Options[1].ID
	f.castFor(t, voters[0].Token, optA)
	f.castFor(t, voters[1].Token, optA)
	f.castFor(t, voters[2].Token, optB)

	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)

	assert.Equal(t, 3.0, results[0].Weight)
	assert.Equal(t, 75.0, results[0].Percentage)
	assert.Equal(t, 1.0, results[1].Weight)
	assert.Equal(t, 25.0, results[1].Percentage)
}

// Weight snapshots taken at cast time must survive later voter edits: only
// ballots cast after the edit see the new weight, and closed results never
// shift retroactively.
func TestTallyUsesWeightSnapshot(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.IsWeighted = true

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 4, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	f.castFor(t, voters[1].Token, election.Options[1].ID)

	ballots, err := f.store.Ballots().ListSecret(context.Background(), election.ID)
	require.NoError(t, err)
	weights := []float64{ballots[0].VoterWeight, ballots[1].VoterWeight}
	assert.ElementsMatch(t, []float64{4, 1}, weights)
}

func TestTallyMultiChoice(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.VotingType = domain.VotingMultiChoice

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1)
	f.startElection(t, election)

	optA, optB := election.Options[0].ID, election.Options[1].ID
	f.castFor(t, voters[0].Token, optA, optB)
	f.castFor(t, voters[1].Token, optA)

	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), results[0].Votes)
	assert.Equal(t, int64(1), results[1].Votes)
	assert.Equal(t, int64(0), results[2].Votes)
}

func TestTallyPublicVotes(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.IsSecret = false
	input.AllowAnonymity = false

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	f.castFor(t, voters[1].Token, election.Options[0].ID)

	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), results[0].Votes)
	assert.Equal(t, 100.0, results[0].Percentage)
}

func TestTallyDeferredCounting(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.DeferredCounting = true

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	f.castFor(t, voters[1].Token, election.Options[0].ID)
	f.castFor(t, voters[2].Token, election.Options[1].ID)

	_, err := f.tally.Tally(context.Background(), election.ID)
	assert.ErrorIs(t, err, domain.ErrResultsWithheld)

	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	deferred, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)

	// The withheld tally must match what a non-deferred election would have
	// produced from identical ballots.
	g := newFixture()
	reference := g.createElection(t, defaultElectionInput())
	refVoters := g.addVoters(t, reference, 1, 1, 1)
	g.startElection(t, reference)
	g.castFor(t, refVoters[0].Token, reference.Options[0].ID)
	g.castFor(t, refVoters[1].Token, reference.Options[0].ID)
	g.castFor(t, refVoters[2].Token, reference.Options[1].ID)

	expected, err := g.tally.Tally(context.Background(), reference.ID)
	require.NoError(t, err)

	require.Equal(t, len(expected), len(deferred))
	for i := range expected {
		assert.Equal(t, expected[i].Votes, deferred[i].Votes)
		assert.Equal(t, expected[i].Percentage, deferred[i].Percentage)
	}
}

func TestTallyLiveForNonDeferred(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)

	// Live results while casting continues.
	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[0].Votes)

	f.castFor(t, voters[1].Token, election.Options[1].ID)

	results, err = f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[1].Votes)
}

func TestTallyEmptyElection(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())

	results, err := f.tally.Tally(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.Zero(t, result.Votes)
		assert.Zero(t, result.Percentage)
	}
}

func TestTurnout(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	voters := f.addVoters(t, election, 1, 1, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)
	f.castFor(t, voters[1].Token, election.Options[1].ID)
	f.castFor(t, voters[2].Token, election.Options[2].ID)

	turnout, err := f.tally.Turnout(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, turnout.Eligible)
	assert.Equal(t, 3, turnout.Attended)
	assert.Equal(t, 75.0, turnout.Percentage)
}

func TestObserverGrantAndResolve(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())

	observer, err := f.observers.Grant(context.Background(), ports.GrantObserverInput{
		ElectionID:    election.ID,
		CanSeeResults: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, observer.AccessToken)

	resolved, err := f.observers.Resolve(context.Background(), observer.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, election.ID, resolved.ElectionID)
	assert.True(t, resolved.CanSeeResults)
	assert.False(t, resolved.CanSeeTurnout)

	_, err = f.observers.Resolve(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrObserverNotFound)
}
