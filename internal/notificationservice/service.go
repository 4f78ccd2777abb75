// Package notificationservice manages the best-effort notification
// collaborator: it logs a notification row for the user and relays the
// rendered message by email. Callers invoke it only after a durable commit
// and treat every failure as non-fatal.
package notificationservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/concierge-bank/backend/internal/domain"
)

// Repo provides data access layer interface needed by notification service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package notificationservice
type Repo interface {
	Create(ctx context.Context, username, kind, message string) (domain.Notification, error)
	List(ctx context.Context, username string, limit, offset int32) ([]domain.Notification, error)
}

// Users resolves a username to the user record holding the email address.
type Users interface {
	Get(ctx context.Context, username string) (domain.User, error)
}

// Sender delivers a rendered message to an email address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service facilitates notification service layer logic.
type Service struct {
	repo   Repo
	users  Users
	sender Sender
}

// New returns notification service struct.
func New(nr Repo, ur Users, sender Sender) *Service {
	return &Service{
		repo:   nr,
		users:  ur,
		sender: sender,
	}
}

// Notify logs the notification and sends the email in one call. The row is
// written first so the in-app notification survives a relay outage.
func (s *Service) Notify(ctx context.Context, username, kind, message, subject, body string) error {
	l := zerolog.Ctx(ctx)

	if _, err := s.repo.Create(ctx, username, kind, message); err != nil {
		return err
	}

	if subject == "" || body == "" {
		return nil
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}

	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		l.Warn().Err(err).Str("username", username).Msg("email relay failed")
		return err
	}

	return nil
}

// List returns the user's notifications, most recent first.
func (s *Service) List(ctx context.Context, username string, pageSize, pageID int32) ([]domain.Notification, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	notifications, err := s.repo.List(ctx, username, limit, offset)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}
