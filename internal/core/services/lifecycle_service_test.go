package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

func TestCreateElection(t *testing.T) {
	f := newFixture()

	election := f.createElection(t, defaultElectionInput())

	assert.Equal(t, domain.PhaseDraft, election.Phase)
	assert.Len(t, election.Options, 3)
	assert.Equal(t, domain.QuorumNone, election.QuorumType)
	assert.Nil(t, election.ActualStart)
}

func TestCreateElectionValidation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(*ports.CreateElectionInput)
	}{
		{"missing title", func(in *ports.CreateElectionInput) { in.Title = "" }},
		{"one option", func(in *ports.CreateElectionInput) { in.Options = in.Options[:1] }},
		{"bad voting type", func(in *ports.CreateElectionInput) { in.VotingType = "acclamation" }},
		{"quorum without required", func(in *ports.CreateElectionInput) {
			in.QuorumType = domain.QuorumPercentage
			in.QuorumRequired = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := defaultElectionInput()
			tt.mutate(&input)
			_, err := f.lifecycle.Create(context.Background(), input)
			assert.Error(t, err)
		})
	}
}

func TestStartElection(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	f.addVoters(t, election, 1)

	f.startElection(t, election)

	stored, err := f.lifecycle.Get(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseActive, stored.Phase)
	require.NotNil(t, stored.ActualStart)
	assert.Nil(t, stored.ActualEnd)

	assert.Len(t, f.events.OfType(domain.EventElectionStarted), 1)
}

func TestStartElectionWithoutVoters(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())

	err := f.lifecycle.Start(context.Background(), election.ID, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStartElectionBeforeScheduledStart(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	start := time.Now().Add(time.Hour)
	input.ScheduledStart = &start

	election := f.createElection(t, input)
	f.addVoters(t, election, 1)

	err := f.lifecycle.Start(context.Background(), election.ID, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStartElectionTwice(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	f.addVoters(t, election, 1)
	f.startElection(t, election)

	err := f.lifecycle.Start(context.Background(), election.ID, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrAlreadyStarted)
}

func TestCloseElection(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	f.addVoters(t, election, 1)
	f.startElection(t, election)

	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	stored, err := f.lifecycle.Get(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseClosed, stored.Phase)
	require.NotNil(t, stored.ActualEnd)

	assert.Len(t, f.events.OfType(domain.EventElectionClosed), 1)
}

func TestCloseElectionIdempotence(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	f.addVoters(t, election, 1)
	f.startElection(t, election)
	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual))

	first, err := f.lifecycle.Get(context.Background(), election.ID)
	require.NoError(t, err)

	err = f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	second, err := f.lifecycle.Get(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ActualEnd, second.ActualEnd)
	assert.Len(t, f.events.OfType(domain.EventElectionClosed), 1)
}

func TestCloseDraftElection(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())

	err := f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCloseElectionQuorumNotMet(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.QuorumType = domain.QuorumAbsolute
	input.QuorumRequired = 2

	election := f.createElection(t, input)
	voters := f.addVoters(t, election, 1, 1, 1)
	f.startElection(t, election)

	f.castFor(t, voters[0].Token, election.Options[0].ID)

	err := f.lifecycle.Close(context.Background(), election.ID, false, domain.TriggerManual)
	assert.ErrorIs(t, err, domain.ErrQuorumNotMet)
}

func TestForceCloseRecordsAudit(t *testing.T) {
	f := newFixture()
	input := defaultElectionInput()
	input.QuorumType = domain.QuorumAbsolute
	input.QuorumRequired = 3

	election := f.createElection(t, input)
	f.addVoters(t, election, 1, 1, 1)
	f.startElection(t, election)

	require.NoError(t, f.lifecycle.Close(context.Background(), election.ID, true, domain.TriggerManual))

	audits := f.store.Audits()
	require.Len(t, audits, 2)
	closeAudit := audits[1]
	assert.Equal(t, domain.TransitionClose, closeAudit.Kind)
	assert.Equal(t, domain.TriggerManual, closeAudit.Trigger)
	assert.True(t, closeAudit.Forced)
}

func TestUpdateDraftOnlyInDraft(t *testing.T) {
	f := newFixture()
	election := f.createElection(t, defaultElectionInput())
	f.addVoters(t, election, 1)

	updated, err := f.lifecycle.UpdateDraft(context.Background(), election.ID, ports.UpdateElectionInput{
		Title: "Renamed election",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed election", updated.Title)

	f.startElection(t, election)

	_, err = f.lifecycle.UpdateDraft(context.Background(), election.ID, ports.UpdateElectionInput{
		Title: "Too late",
	})
	assert.ErrorIs(t, err, domain.ErrElectionLocked)
}
