package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ballotbox/api/internal/adapters/notifier"
	"github.com/ballotbox/api/internal/adapters/repository/memory"
	"github.com/ballotbox/api/internal/ballotseal"
	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type fixture struct {
	store     *memory.Store
	events    *notifier.Capture
	sealer    *ballotseal.Sealer
	lifecycle ports.LifecycleService
	voters    ports.VoterService
	cast      ports.CastService
	quorum    ports.QuorumService
	tally     ports.TallyService
	observers ports.ObserverService
}

func newFixture() *fixture {
	store := memory.NewStore()
	events := notifier.NewCapture()
	sealer := ballotseal.New("test-seal-secret")

	quorum := NewQuorumService(store.Elections(), store.Voters(), store.Attendance())
	voters := NewVoterService(store.Elections(), store.Voters(), events)

	return &fixture{
		store:     store,
		events:    events,
		sealer:    sealer,
		lifecycle: NewLifecycleService(store.Elections(), store.Voters(), quorum, events),
		voters:    voters,
		cast:      NewCastService(store.Elections(), voters, store.Ballots(), quorum, sealer, events),
		quorum:    quorum,
		tally:     NewTallyService(store.Elections(), store.Voters(), store.Ballots(), store.Attendance(), sealer),
		observers: NewObserverService(store.Elections(), store.Observers()),
	}
}

func defaultElectionInput() ports.CreateElectionInput {
	return ports.CreateElectionInput{
		Title:      "Board election",
		VotingType: domain.VotingSingleChoice,
		IsSecret:   true,
		Options: []ports.CreateOptionInput{
			{Text: "Alice"},
			{Text: "Bob"},
			{Text: "Carol"},
		},
	}
}

func (f *fixture) createElection(t *testing.T, input ports.CreateElectionInput) *domain.Election {
	t.Helper()
	election, err := f.lifecycle.Create(context.Background(), input)
	require.NoError(t, err)
	return election
}

func (f *fixture) addVoters(t *testing.T, election *domain.Election, weights ...float64) []*domain.Voter {
	t.Helper()

	voters := make([]*domain.Voter, 0, len(weights))
	for i, weight := range weights {
		voter, err := f.voters.AddVoter(context.Background(), ports.AddVoterInput{
			ElectionID: election.ID,
			Email:      fmt.Sprintf("voter%d@example.com", i),
			Weight:     weight,
		})
		require.NoError(t, err)
		voters = append(voters, voter)
	}
	return voters
}

func (f *fixture) startElection(t *testing.T, election *domain.Election) {
	t.Helper()
	require.NoError(t, f.lifecycle.Start(context.Background(), election.ID, domain.TriggerManual))
}

func (f *fixture) castFor(t *testing.T, token string, optionIDs ...uuid.UUID) *domain.Receipt {
	t.Helper()

	receipt, err := f.cast.CastVote(context.Background(), ports.CastVoteInput{
		Token:     token,
		Selection: domain.Selection{OptionIDs: optionIDs},
		IP:        "203.0.113.10",
		UserAgent: "go-test",
	})
	require.NoError(t, err)
	return receipt
}
