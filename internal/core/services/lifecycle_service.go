package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type lifecycleService struct {
	electionRepo ports.ElectionRepository
	voterRepo    ports.VoterRepository
	quorum       ports.QuorumService
	emitter      ports.EventEmitter
	log          *logrus.Entry
}

func NewLifecycleService(
	electionRepo ports.ElectionRepository,
	voterRepo ports.VoterRepository,
	quorum ports.QuorumService,
	emitter ports.EventEmitter,
) ports.LifecycleService {
	return &lifecycleService{
		electionRepo: electionRepo,
		voterRepo:    voterRepo,
		quorum:       quorum,
		emitter:      emitter,
		log:          logrus.WithField("component", "lifecycle"),
	}
}

func (s *lifecycleService) Create(ctx context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if !input.VotingType.Valid() {
		return nil, errors.New("unknown voting type")
	}
	if input.QuorumType == "" {
		input.QuorumType = domain.QuorumNone
	}
	if !input.QuorumType.Valid() {
		return nil, errors.New("unknown quorum type")
	}
	if input.QuorumType != domain.QuorumNone && input.QuorumRequired <= 0 {
		return nil, errors.New("quorum requires a positive required value")
	}
	if input.ScheduledStart != nil && input.ScheduledEnd != nil && !input.ScheduledEnd.After(*input.ScheduledStart) {
		return nil, errors.New("scheduled end must be after scheduled start")
	}

	electionID := uuid.New()
	now := time.Now()

	election := &domain.Election{
		ID:               electionID,
		Title:            input.Title,
		Description:      input.Description,
		VotingType:       input.VotingType,
		IsSecret:         input.IsSecret,
		IsWeighted:       input.IsWeighted || input.VotingType == domain.VotingWeighted,
		AllowAnonymity:   input.AllowAnonymity,
		Phase:            domain.PhaseDraft,
		DeferredCounting: input.DeferredCounting,
		QuorumType:       input.QuorumType,
		QuorumRequired:   input.QuorumRequired,
		MaxVoters:        input.MaxVoters,
		ScheduledStart:   input.ScheduledStart,
		ScheduledEnd:     input.ScheduledEnd,
		CreatedAt:        now,
	}

	options, err := buildOptions(electionID, input.Options, now)
	if err != nil {
		return nil, err
	}
	election.Options = options

	if err := s.electionRepo.Save(ctx, election); err != nil {
		return nil, err
	}

	return election, nil
}

func (s *lifecycleService) Get(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	return s.electionRepo.GetByID(ctx, id)
}

func (s *lifecycleService) UpdateDraft(ctx context.Context, id uuid.UUID, input ports.UpdateElectionInput) (*domain.Election, error) {
	election, err := s.electionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if election.Phase != domain.PhaseDraft {
		return nil, domain.ErrElectionLocked
	}

	if input.Title != "" {
		election.Title = input.Title
	}
	if input.Description != "" {
		election.Description = input.Description
	}
	if len(input.Options) > 0 {
		options, err := buildOptions(election.ID, input.Options, time.Now())
		if err != nil {
			return nil, err
		}
		election.Options = options
	}

	if err := s.electionRepo.UpdateDraft(ctx, election); err != nil {
		return nil, err
	}

	return election, nil
}

func (s *lifecycleService) Start(ctx context.Context, id uuid.UUID, trigger domain.TransitionTrigger) error {
	election, err := s.electionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if election.Phase != domain.PhaseDraft {
		return domain.ErrAlreadyStarted
	}
	if len(election.Options) < 2 {
		return domain.ErrInvalidTransition
	}

	voterCount, err := s.voterRepo.CountByElection(ctx, id)
	if err != nil {
		return err
	}
	if voterCount < 1 {
		return domain.ErrInvalidTransition
	}

	now := time.Now()
	if election.ScheduledStart != nil && now.Before(*election.ScheduledStart) {
		return domain.ErrInvalidTransition
	}

	// The CAS on the phase column decides the race: a concurrent start that
	// lost sees ErrInvalidTransition here and reports ErrAlreadyStarted.
	if err := s.electionRepo.TransitionPhase(ctx, id, domain.PhaseDraft, domain.PhaseActive, now); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.ErrAlreadyStarted
		}
		return err
	}

	if err := s.audit(ctx, id, domain.TransitionStart, trigger, false, now); err != nil {
		s.log.WithError(err).WithField("election_id", id).Warn("failed to record start audit")
	}

	s.log.WithFields(logrus.Fields{"election_id": id, "trigger": trigger}).Info("election started")
	s.emitter.Emit(ctx, domain.Event{
		ElectionID: id,
		Type:       domain.EventElectionStarted,
		OccurredAt: now,
	})

	return nil
}

func (s *lifecycleService) Close(ctx context.Context, id uuid.UUID, force bool, trigger domain.TransitionTrigger) error {
	election, err := s.electionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch election.Phase {
	case domain.PhaseClosed:
		return domain.ErrAlreadyClosed
	case domain.PhaseDraft:
		return domain.ErrInvalidTransition
	}

	if election.QuorumType != domain.QuorumNone && !force {
		status, err := s.quorum.Status(ctx, id)
		if err != nil {
			return err
		}
		if !status.Reached {
			return domain.ErrQuorumNotMet
		}
	}

	now := time.Now()
	if err := s.electionRepo.TransitionPhase(ctx, id, domain.PhaseActive, domain.PhaseClosed, now); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.ErrAlreadyClosed
		}
		return err
	}

	if err := s.audit(ctx, id, domain.TransitionClose, trigger, force, now); err != nil {
		s.log.WithError(err).WithField("election_id", id).Warn("failed to record close audit")
	}

	s.log.WithFields(logrus.Fields{
		"election_id": id,
		"trigger":     trigger,
		"forced":      force,
	}).Info("election closed")

	payload := map[string]any{}
	if election.DeferredCounting {
		// Results were withheld during the active phase; the close is the
		// moment they become readable.
		payload["results_available"] = true
	}
	s.emitter.Emit(ctx, domain.Event{
		ElectionID: id,
		Type:       domain.EventElectionClosed,
		OccurredAt: now,
		Payload:    payload,
	})

	return nil
}

func (s *lifecycleService) audit(ctx context.Context, electionID uuid.UUID, kind domain.TransitionKind, trigger domain.TransitionTrigger, forced bool, at time.Time) error {
	return s.electionRepo.SaveAudit(ctx, &domain.TransitionAudit{
		ID:         uuid.New(),
		ElectionID: electionID,
		Kind:       kind,
		Trigger:    trigger,
		Forced:     forced,
		OccurredAt: at,
	})
}

func buildOptions(electionID uuid.UUID, inputs []ports.CreateOptionInput, now time.Time) ([]domain.Option, error) {
	var options []domain.Option
	for _, opt := range inputs {
		if opt.Text == "" {
			continue
		}
		options = append(options, domain.Option{
			ID:         uuid.New(),
			ElectionID: electionID,
			Text:       opt.Text,
			Position:   len(options),
			Candidate:  opt.Candidate,
			CreatedAt:  now,
		})
	}

	if len(options) < 2 {
		return nil, errors.New("at least two valid options are required")
	}
	return options, nil
}
