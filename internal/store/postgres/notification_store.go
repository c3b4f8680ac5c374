package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	row := toNotificationRow(n)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create notification", err)
	}
	n.Seq = row.Seq
	return nil
}

func (s *NotificationStore) List(ctx context.Context, recipientID string, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	var rows []notificationRow
	var total int64

	q := s.db.WithContext(ctx).Model(&notificationRow{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count notifications", err)
	}

	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list notifications", err)
	}

	out := make([]domain.Notification, len(rows))
	for i := range rows {
		out[i] = *fromNotificationRow(&rows[i])
	}
	return out, total, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).Count(&count).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "unread count", err)
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"read": true, "read_at": gorm.Expr("now()")})
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindInternal, "mark read", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Updates(map[string]interface{}{"read": true, "read_at": gorm.Expr("now()")})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "mark all read", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id, recipientID string) error {
	res := s.db.WithContext(ctx).Delete(&notificationRow{}, "id = ? AND recipient_id = ?", id, recipientID)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "notification not found")
	}
	return nil
}
