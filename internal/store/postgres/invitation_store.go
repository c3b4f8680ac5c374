package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type InvitationStore struct {
	db *gorm.DB
}

func NewInvitationStore(db *gorm.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

func (s *InvitationStore) Create(ctx context.Context, i *domain.AssessmentInvitation) error {
	row := toInvitationRow(i)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create invitation", err)
	}
	return nil
}

func (s *InvitationStore) GetByToken(ctx context.Context, token string) (*domain.AssessmentInvitation, error) {
	var row invitationRow
	if err := s.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "invitation not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get invitation by token", err)
	}
	return fromInvitationRow(&row), nil
}

func (s *InvitationStore) GetByID(ctx context.Context, id string) (*domain.AssessmentInvitation, error) {
	var row invitationRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "invitation not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get invitation", err)
	}
	return fromInvitationRow(&row), nil
}

func (s *InvitationStore) Update(ctx context.Context, i *domain.AssessmentInvitation) error {
	row := toInvitationRow(i)
	if err := s.db.WithContext(ctx).Model(&invitationRow{}).Where("id = ?", i.ID).Updates(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "update invitation", err)
	}
	return nil
}

// HasInProgressSession guards against a freelancer opening a second
// concurrent session against the same invitation link.
func (s *InvitationStore) HasInProgressSession(ctx context.Context, invitationID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&sessionRow{}).
		Where("invitation_id = ? AND status = ?", invitationID, string(domain.SessionInProgress)).
		Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "check in-progress session", err)
	}
	return count > 0, nil
}
