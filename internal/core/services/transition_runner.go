package services

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

const storageRetryAttempts = 3

// TransitionRunner periodically applies scheduled starts and closes. A
// transition that already happened is a no-op here, never an alert: the
// runner may race with a manual organizer action and lose.
type TransitionRunner struct {
	lifecycle    ports.LifecycleService
	electionRepo ports.ElectionRepository
	interval     time.Duration
	log          *logrus.Entry
}

func NewTransitionRunner(
	lifecycle ports.LifecycleService,
	electionRepo ports.ElectionRepository,
	interval time.Duration,
) *TransitionRunner {
	return &TransitionRunner{
		lifecycle:    lifecycle,
		electionRepo: electionRepo,
		interval:     interval,
		log:          logrus.WithField("component", "transition_runner"),
	}
}

func (r *TransitionRunner) DueTransitions(ctx context.Context, now time.Time) ([]ports.DueTransition, error) {
	return r.electionRepo.DueTransitions(ctx, now)
}

func (r *TransitionRunner) ApplyScheduled(ctx context.Context, electionID uuid.UUID, kind domain.TransitionKind) error {
	apply := func() error {
		switch kind {
		case domain.TransitionStart:
			return r.lifecycle.Start(ctx, electionID, domain.TriggerScheduled)
		case domain.TransitionClose:
			return r.lifecycle.Close(ctx, electionID, false, domain.TriggerScheduled)
		default:
			return domain.ErrInvalidTransition
		}
	}

	err := retry.Do(
		apply,
		retry.Context(ctx),
		retry.Attempts(storageRetryAttempts),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, domain.ErrStorageUnavailable)
		}),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}

	if benignScheduleError(err) {
		r.log.WithFields(logrus.Fields{
			"election_id": electionID,
			"kind":        kind,
		}).WithError(err).Debug("scheduled transition skipped")
		return nil
	}

	return err
}

// Run scans for due transitions on a fixed interval until ctx is cancelled.
func (r *TransitionRunner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.tick(ctx, now)
		}
	}
}

func (r *TransitionRunner) tick(ctx context.Context, now time.Time) {
	due, err := r.DueTransitions(ctx, now)
	if err != nil {
		r.log.WithError(err).Error("failed to scan due transitions")
		return
	}

	for _, transition := range due {
		if err := r.ApplyScheduled(ctx, transition.ElectionID, transition.Kind); err != nil {
			r.log.WithFields(logrus.Fields{
				"election_id": transition.ElectionID,
				"kind":        transition.Kind,
			}).WithError(err).Error("failed to apply scheduled transition")
		}
	}
}

// benignScheduleError reports whether a transition failure means "nothing to
// do": the transition already happened, the phase moved on, or quorum is not
// there yet and the close simply waits for the next scan.
func benignScheduleError(err error) bool {
	return errors.Is(err, domain.ErrAlreadyStarted) ||
		errors.Is(err, domain.ErrAlreadyClosed) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrQuorumNotMet)
}
