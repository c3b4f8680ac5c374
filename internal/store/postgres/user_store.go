package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create user", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get user", err)
	}
	return fromUserRow(&row), nil
}

func (s *UserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get user by external id", err)
	}
	return fromUserRow(&row), nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get user by email", err)
	}
	return fromUserRow(&row), nil
}

func (s *UserStore) Update(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", u.ID).Updates(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "update user", err)
	}
	return nil
}

func (s *UserStore) Deactivate(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "deactivated_at": gorm.Expr("now()")})
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "deactivate user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// IncrementBalance is the document-store $inc emulated as a single
// atomic UPDATE; no read-modify-write race window exists between
// concurrent payouts landing on the same user.
func (s *UserStore) IncrementBalance(ctx context.Context, userID string, delta, earningsDelta float64) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", delta),
			"total_earnings": gorm.Expr("total_earnings + ?", earningsDelta),
		})
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "increment balance", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// DecrementIfSufficient is the compare-and-set withdrawal debit: the
// WHERE clause re-checks the precondition inside the same statement
// the database executes, so two concurrent withdrawal requests cannot
// both observe a sufficient balance and both succeed.
func (s *UserStore) DecrementIfSufficient(ctx context.Context, userID string, amount float64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindInternal, "decrement balance", res.Error)
	}
	return res.RowsAffected > 0, nil
}
