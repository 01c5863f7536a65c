package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrix/domain/event"
	connerrors "connectrix/errors"
	"connectrix/repositories"
)

// PresenceSink tracks online/offline state on the user document. It is a
// permanent sink on the fanout so it observes every session event.
//
// Presence is reference-counted per user: connect always writes online,
// disconnect writes offline only when the registry reports the last
// session gone, so closing one device of a multi-device user keeps the
// user online.
type PresenceSink struct {
	users repositories.IUserRepository
	log   *slog.Logger
}

func NewPresenceSink(users repositories.IUserRepository, log *slog.Logger) PresenceSink {
	return PresenceSink{users: users, log: log}
}

func (p PresenceSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.SessionOpened:
		return p.write(evt.UserID, true, evt.At)
	case event.SessionClosed:
		if !evt.LastOfUser {
			return nil
		}
		return p.write(evt.UserID, false, evt.At)
	default:
		return nil
	}
}

func (p PresenceSink) write(userID string, online bool, at time.Time) error {
	err := p.users.SetPresence(userID, online, at)
	if errors.Is(err, connerrors.ErrUserNotFound) {
		// The user record is expected to exist from the account upsert
		// flow. Log instead of auto-creating so an upstream provisioning
		// bug stays visible.
		p.log.Warn("Presence update skipped, user document missing", "user_id", userID)
		return nil
	}
	return err
}
