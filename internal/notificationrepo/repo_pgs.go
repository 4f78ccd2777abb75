// Package notificationrepo manages repository layer of notifications.
package notificationrepo

import (
	"context"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/pkg/dbpkg"
	"github.com/concierge-bank/backend/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates notification repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns notification RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const createQuery = `
INSERT INTO
    notifications (username, type, message)
VALUES
    ($1, $2, $3)
RETURNING id, username, type, message, created_at
`

// Create logs the notification and then returns it.
func (r *RepoPGS) Create(ctx context.Context, username, kind, message string) (domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, username, kind, message)

	var n domain.Notification

	err := row.Scan(
		&n.ID,
		&n.Username,
		&n.Kind,
		&n.Message,
		&n.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "notifications_username_fkey" {
				return n, domain.ErrUserNotFound
			}
		}

		return n, errorspkg.ErrInternal
	}

	return n, nil
}

const listQuery = `
SELECT id, username, type, message, created_at FROM notifications
WHERE username = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns the user's notifications, most recent first.
func (r *RepoPGS) List(ctx context.Context, username string, limit, offset int32) ([]domain.Notification, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, username, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Notification{}

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Username, &n.Kind, &n.Message, &n.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
