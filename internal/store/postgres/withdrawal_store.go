package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type WithdrawalStore struct {
	db *gorm.DB
}

func NewWithdrawalStore(db *gorm.DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

func (s *WithdrawalStore) Create(ctx context.Context, w *domain.Withdrawal) error {
	row := toWithdrawalRow(w)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create withdrawal", err)
	}
	return nil
}

func (s *WithdrawalStore) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	var row withdrawalRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "withdrawal not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get withdrawal", err)
	}
	return fromWithdrawalRow(&row), nil
}

// HasOpenForUser backs the "one open withdrawal at a time" rule: a
// user cannot have two pending/processing withdrawals in flight.
func (s *WithdrawalStore) HasOpenForUser(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&withdrawalRow{}).
		Where("owner_id = ? AND status IN ?", userID, []string{string(domain.WithdrawalPending), string(domain.WithdrawalProcessing)}).
		Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "check open withdrawal", err)
	}
	return count > 0, nil
}

func (s *WithdrawalStore) ListForUser(ctx context.Context, userID string, page, limit int) ([]domain.Withdrawal, int64, error) {
	var rows []withdrawalRow
	var total int64

	q := s.db.WithContext(ctx).Model(&withdrawalRow{}).Where("owner_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count withdrawals", err)
	}

	offset := (page - 1) * limit
	if err := q.Order("requested_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list withdrawals", err)
	}

	out := make([]domain.Withdrawal, len(rows))
	for i := range rows {
		out[i] = *fromWithdrawalRow(&rows[i])
	}
	return out, total, nil
}

func (s *WithdrawalStore) ListAll(ctx context.Context, status string, page, limit int) ([]domain.Withdrawal, int64, error) {
	var rows []withdrawalRow
	var total int64

	q := s.db.WithContext(ctx).Model(&withdrawalRow{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count withdrawals", err)
	}

	offset := (page - 1) * limit
	if err := q.Order("requested_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list withdrawals", err)
	}

	out := make([]domain.Withdrawal, len(rows))
	for i := range rows {
		out[i] = *fromWithdrawalRow(&rows[i])
	}
	return out, total, nil
}

func (s *WithdrawalStore) CompareAndSetStatus(ctx context.Context, id string, expectedCurrent, next domain.WithdrawalStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&withdrawalRow{}).
		Where("id = ? AND status = ?", id, string(expectedCurrent)).
		Update("status", string(next))
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindInternal, "transition withdrawal", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *WithdrawalStore) Update(ctx context.Context, w *domain.Withdrawal) error {
	row := toWithdrawalRow(w)
	if err := s.db.WithContext(ctx).Model(&withdrawalRow{}).Where("id = ?", w.ID).Updates(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "update withdrawal", err)
	}
	return nil
}
