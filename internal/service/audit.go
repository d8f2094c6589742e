package service

import (
	"context"
	"encoding/json"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/events"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Auditor appends to the security log and mirrors each entry to the event
// publisher. Failures are logged and never surface to the caller.
type Auditor struct {
	logs      repository.SecurityLogRepository
	publisher events.Publisher
	logger    logrus.FieldLogger
	clock     Clock
}

func NewAuditor(logs repository.SecurityLogRepository, publisher events.Publisher, logger logrus.FieldLogger, clock Clock) *Auditor {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Auditor{logs: logs, publisher: publisher, logger: logger, clock: clock}
}

func (a *Auditor) Record(
	ctx context.Context,
	userID *uint64,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if a == nil {
		return
	}
	now := a.clock.Now()

	if a.logs != nil {
		var payload datatypes.JSON
		if metadata != nil {
			bytes, err := json.Marshal(metadata)
			if err == nil {
				payload = datatypes.JSON(bytes)
			}
		}
		log := &entity.SecurityLog{
			UserID:    userID,
			IPAddress: ipAddress,
			Action:    action,
			Metadata:  payload,
			CreatedAt: now,
		}
		if err := a.logs.Log(ctx, log); err != nil {
			a.warn(err, action, "security log write failed")
		}
	}

	event := events.Event{
		Action:    string(action),
		UserID:    userID,
		IPAddress: ipAddress,
		Metadata:  metadata,
		At:        now,
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.warn(err, action, "security event publish failed")
	}
}

func (a *Auditor) warn(err error, action entity.SecurityAction, msg string) {
	if a.logger == nil {
		return
	}
	a.logger.WithError(err).WithField("action", action).Warn(msg)
}
