package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.AssessmentSession) error {
	row := toSessionRow(sess)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create session", err)
	}
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id string) (*domain.AssessmentSession, error) {
	var row sessionRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "session not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get session", err)
	}
	return fromSessionRow(&row), nil
}

func (s *SessionStore) Update(ctx context.Context, sess *domain.AssessmentSession) error {
	row := toSessionRow(sess)
	if err := s.db.WithContext(ctx).Model(&sessionRow{}).Where("id = ?", sess.ID).Updates(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "update session", err)
	}
	return nil
}
