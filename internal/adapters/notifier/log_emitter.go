// Package notifier provides EventEmitter adapters. The real-time push
// transport lives outside this service; these adapters are what the engine
// hands committed events to.
package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ballotbox/api/internal/core/domain"
	"github.com/ballotbox/api/internal/core/ports"
)

type logEmitter struct {
	log *logrus.Entry
}

func NewLogEmitter() ports.EventEmitter {
	return &logEmitter{log: logrus.WithField("component", "notifier")}
}

func (e *logEmitter) Emit(_ context.Context, event domain.Event) {
	e.log.WithFields(logrus.Fields{
		"election_id": event.ElectionID,
		"type":        event.Type,
	}).Info("event emitted")
}
