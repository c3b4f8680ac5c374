// Package notify implements the notification fabric of spec §4.3: a
// persisted, totally-ordered-per-recipient log fronted by a real-time
// push best-effort layer. The push side (internal/realtime) is
// optional from this package's point of view — if it is unavailable
// the persistent log is still written, exactly as the contract
// requires.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/metrics"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

// Pusher is the real-time fan-out boundary this package depends on
// through an interface rather than importing internal/realtime
// directly, so the fabric degrades to log-only when no pusher is wired.
type Pusher interface {
	PushToUser(userID string, event string, payload interface{})
}

type Service struct {
	store  store.NotificationStore
	pusher Pusher
	log    *logrus.Entry
}

func New(notifications store.NotificationStore, pusher Pusher, log *logrus.Entry) *Service {
	return &Service{store: notifications, pusher: pusher, log: log}
}

type EmitInput struct {
	Recipient    string
	Type         domain.NotificationType
	Title        string
	Body         string
	ContractID   string
	AssessmentID string
	ActorID      string
	Metadata     map[string]interface{}
}

// Emit persists then best-effort pushes, in that order, so the
// ordering guarantee (server-assigned, monotonically increasing per
// recipient) is anchored to the durable write, not the transient push.
func (s *Service) Emit(ctx context.Context, in EmitInput) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:           uuid.NewString(),
		RecipientID:  in.Recipient,
		Type:         in.Type,
		Title:        in.Title,
		Body:         in.Body,
		ContractID:   in.ContractID,
		AssessmentID: in.AssessmentID,
		ActorID:      in.ActorID,
		Metadata:     in.Metadata,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	metrics.NotificationsEmitted.WithLabelValues(string(in.Type)).Inc()

	if s.pusher != nil {
		s.pusher.PushToUser(in.Recipient, "notification:new", n)
		if count, err := s.store.UnreadCount(ctx, in.Recipient); err == nil {
			s.pusher.PushToUser(in.Recipient, "notification:unreadCount", count)
		}
	} else {
		s.log.WithField("recipient", in.Recipient).Debug("no realtime pusher wired, log-only delivery")
	}

	return n, nil
}

func (s *Service) List(ctx context.Context, recipientID string, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.store.List(ctx, recipientID, page, limit, unreadOnly)
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.store.UnreadCount(ctx, recipientID)
}

// MarkRead is a no-op, not an error, if the notification is already
// read or does not belong to the caller — mutating calls on an
// already-terminal notification must stay idempotent per spec §4.3.
func (s *Service) MarkRead(ctx context.Context, id, recipientID string) error {
	ok, err := s.store.MarkRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if count, err := s.store.UnreadCount(ctx, recipientID); err == nil && s.pusher != nil {
		s.pusher.PushToUser(recipientID, "notification:unreadCount", count)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	if _, err := s.store.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	if s.pusher != nil {
		s.pusher.PushToUser(recipientID, "notification:unreadCount", int64(0))
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id, recipientID string) error {
	if err := s.store.Delete(ctx, id, recipientID); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	return nil
}
