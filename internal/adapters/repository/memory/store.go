// Package memory implements the repository ports against in-process maps.
// One mutex guards the whole store, which gives the Append* calls the same
// all-or-nothing CAS semantics the SQL adapter gets from transactions.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type Store struct {
	mu sync.Mutex

	elections map[uuid.UUID]*domain.Election
	audits    []*domain.TransitionAudit

	voters  map[uuid.UUID]*domain.Voter
	byToken map[string]uuid.UUID

	ballots     map[uuid.UUID][]*domain.Ballot
	publicVotes map[uuid.UUID][]*domain.PublicVote
	attendance  map[uuid.UUID][]*domain.AttendanceEntry

	observers map[string]*domain.Observer
}

func NewStore() *Store {
	return &Store{
		elections:   make(map[uuid.UUID]*domain.Election),
		voters:      make(map[uuid.UUID]*domain.Voter),
		byToken:     make(map[string]uuid.UUID),
		ballots:     make(map[uuid.UUID][]*domain.Ballot),
		publicVotes: make(map[uuid.UUID][]*domain.PublicVote),
		attendance:  make(map[uuid.UUID][]*domain.AttendanceEntry),
		observers:   make(map[string]*domain.Observer),
	}
}

func (s *Store) Elections() ports.ElectionRepository     { return &electionRepo{s} }
func (s *Store) Voters() ports.VoterRepository           { return &voterRepo{s} }
func (s *Store) Ballots() ports.BallotRepository         { return &ballotRepo{s} }
func (s *Store) Attendance() ports.AttendanceRepository  { return &attendanceRepo{s} }
func (s *Store) Observers() ports.ObserverRepository     { return &observerRepo{s} }

// Audits returns recorded transition audits, oldest first.
func (s *Store) Audits() []*domain.TransitionAudit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TransitionAudit, len(s.audits))
	copy(out, s.audits)
	return out
}

type electionRepo struct{ s *Store }

func (r *electionRepo) Save(_ context.Context, election *domain.Election) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.elections[election.ID] = copyElection(election)
	return nil
}

func (r *electionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Election, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	election, ok := r.s.elections[id]
	if !ok {
		return nil, domain.ErrElectionNotFound
	}
	return copyElection(election), nil
}

func (r *electionRepo) UpdateDraft(_ context.Context, election *domain.Election) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.elections[election.ID]
	if !ok {
		return domain.ErrElectionNotFound
	}
	if stored.Phase != domain.PhaseDraft {
		return domain.ErrElectionLocked
	}

	stored.Title = election.Title
	stored.Description = election.Description
	stored.Options = copyOptions(election.Options)
	return nil
}

func (r *electionRepo) TransitionPhase(_ context.Context, id uuid.UUID, from, to domain.Phase, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.elections[id]
	if !ok {
		return domain.ErrElectionNotFound
	}
	if stored.Phase != from {
		return domain.ErrInvalidTransition
	}

	stored.Phase = to
	t := at
	switch to {
	case domain.PhaseActive:
		stored.ActualStart = &t
	case domain.PhaseClosed:
		stored.ActualEnd = &t
	}
	return nil
}

func (r *electionRepo) DueTransitions(_ context.Context, now time.Time) ([]ports.DueTransition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var due []ports.DueTransition
	for _, election := range r.s.elections {
		switch {
		case election.Phase == domain.PhaseDraft &&
			election.ScheduledStart != nil && !now.Before(*election.ScheduledStart):
			due = append(due, ports.DueTransition{ElectionID: election.ID, Kind: domain.TransitionStart})
		case election.Phase == domain.PhaseActive &&
			election.ScheduledEnd != nil && !now.Before(*election.ScheduledEnd):
			due = append(due, ports.DueTransition{ElectionID: election.ID, Kind: domain.TransitionClose})
		}
	}
	return due, nil
}

func (r *electionRepo) SaveAudit(_ context.Context, audit *domain.TransitionAudit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *audit
	r.s.audits = append(r.s.audits, &copied)
	return nil
}

type voterRepo struct{ s *Store }

func (r *voterRepo) Save(_ context.Context, voter *domain.Voter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.voters {
		if existing.ElectionID == voter.ElectionID && existing.Email == voter.Email {
			return domain.ErrDuplicateVoter
		}
	}

	copied := *voter
	r.s.voters[voter.ID] = &copied
	r.s.byToken[voter.Token] = voter.ID
	return nil
}

func (r *voterRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	voter, ok := r.s.voters[id]
	if !ok {
		return nil, errors.New("voter not found")
	}
	copied := *voter
	return &copied, nil
}

func (r *voterRepo) GetByToken(_ context.Context, token string) (*domain.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.byToken[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	copied := *r.s.voters[id]
	return &copied, nil
}

func (r *voterRepo) ListByElection(_ context.Context, electionID uuid.UUID) ([]*domain.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var voters []*domain.Voter
	for _, voter := range r.s.voters {
		if voter.ElectionID == electionID {
			copied := *voter
			voters = append(voters, &copied)
		}
	}
	sort.Slice(voters, func(i, j int) bool { return voters[i].Email < voters[j].Email })
	return voters, nil
}

func (r *voterRepo) CountByElection(_ context.Context, electionID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, voter := range r.s.voters {
		if voter.ElectionID == electionID {
			count++
		}
	}
	return count, nil
}

func (r *voterRepo) Update(_ context.Context, voter *domain.Voter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.voters[voter.ID]
	if !ok {
		return errors.New("voter not found")
	}

	if stored.Token != voter.Token {
		delete(r.s.byToken, stored.Token)
		r.s.byToken[voter.Token] = voter.ID
	}

	copied := *voter
	r.s.voters[voter.ID] = &copied
	return nil
}

func (r *voterRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.voters[id]
	if !ok {
		return errors.New("voter not found")
	}
	delete(r.s.byToken, stored.Token)
	delete(r.s.voters, id)
	return nil
}

type ballotRepo struct{ s *Store }

func (r *ballotRepo) AppendSecret(_ context.Context, voterID uuid.UUID, ballot *domain.Ballot, entry *domain.AttendanceEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.markVotedLocked(voterID, ballot.CastAt); err != nil {
		return err
	}

	copied := *ballot
	r.s.ballots[ballot.ElectionID] = append(r.s.ballots[ballot.ElectionID], &copied)
	entryCopy := *entry
	r.s.attendance[entry.ElectionID] = append(r.s.attendance[entry.ElectionID], &entryCopy)
	return nil
}

func (r *ballotRepo) AppendPublic(_ context.Context, voterID uuid.UUID, vote *domain.PublicVote, entry *domain.AttendanceEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.markVotedLocked(voterID, vote.CastAt); err != nil {
		return err
	}

	copied := *vote
	r.s.publicVotes[vote.ElectionID] = append(r.s.publicVotes[vote.ElectionID], &copied)
	entryCopy := *entry
	r.s.attendance[entry.ElectionID] = append(r.s.attendance[entry.ElectionID], &entryCopy)
	return nil
}

func (r *ballotRepo) ListSecret(_ context.Context, electionID uuid.UUID) ([]*domain.Ballot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Ballot, 0, len(r.s.ballots[electionID]))
	for _, ballot := range r.s.ballots[electionID] {
		copied := *ballot
		out = append(out, &copied)
	}
	return out, nil
}

func (r *ballotRepo) ListPublic(_ context.Context, electionID uuid.UUID) ([]*domain.PublicVote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.PublicVote, 0, len(r.s.publicVotes[electionID]))
	for _, vote := range r.s.publicVotes[electionID] {
		copied := *vote
		out = append(out, &copied)
	}
	return out, nil
}

func (r *ballotRepo) HashExists(_ context.Context, electionID uuid.UUID, ballotHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, ballot := range r.s.ballots[electionID] {
		if ballot.BallotHash == ballotHash {
			return true, nil
		}
	}
	return false, nil
}

// markVotedLocked is the CAS: under the store mutex, exactly one caller sees
// has_voted false and flips it.
func (s *Store) markVotedLocked(voterID uuid.UUID, at time.Time) error {
	voter, ok := s.voters[voterID]
	if !ok {
		return domain.ErrInvalidToken
	}
	if voter.HasVoted {
		return domain.ErrAlreadyVoted
	}
	voter.HasVoted = true
	t := at
	voter.VotedAt = &t
	return nil
}

type attendanceRepo struct{ s *Store }

func (r *attendanceRepo) CountByElection(_ context.Context, electionID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.s.attendance[electionID]), nil
}

func (r *attendanceRepo) WeightByElection(_ context.Context, electionID uuid.UUID) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := 0.0
	for _, entry := range r.s.attendance[electionID] {
		if voter, ok := r.s.voters[entry.VoterID]; ok {
			total += voter.Weight
		}
	}
	return total, nil
}

func (r *attendanceRepo) ListByElection(_ context.Context, electionID uuid.UUID) ([]*domain.AttendanceEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.AttendanceEntry, 0, len(r.s.attendance[electionID]))
	for _, entry := range r.s.attendance[electionID] {
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

type observerRepo struct{ s *Store }

func (r *observerRepo) Save(_ context.Context, observer *domain.Observer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *observer
	r.s.observers[observer.AccessToken] = &copied
	return nil
}

func (r *observerRepo) GetByToken(_ context.Context, accessToken string) (*domain.Observer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	observer, ok := r.s.observers[accessToken]
	if !ok {
		return nil, domain.ErrObserverNotFound
	}
	copied := *observer
	return &copied, nil
}

func copyElection(e *domain.Election) *domain.Election {
	copied := *e
	copied.Options = copyOptions(e.Options)
	return &copied
}

func copyOptions(options []domain.Option) []domain.Option {
	out := make([]domain.Option, len(options))
	copy(out, options)
	return out
}
