package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type AssessmentStore struct {
	db *gorm.DB
}

func NewAssessmentStore(db *gorm.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

func (s *AssessmentStore) Create(ctx context.Context, a *domain.Assessment) error {
	row := toAssessmentRow(a)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create assessment", err)
	}
	return nil
}

func (s *AssessmentStore) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	var row assessmentRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "assessment not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get assessment", err)
	}
	return fromAssessmentRow(&row), nil
}

func (s *AssessmentStore) ListForEmployer(ctx context.Context, employerID string) ([]domain.Assessment, error) {
	var rows []assessmentRow
	if err := s.db.WithContext(ctx).Where("employer_id = ?", employerID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list assessments", err)
	}
	out := make([]domain.Assessment, len(rows))
	for i := range rows {
		out[i] = *fromAssessmentRow(&rows[i])
	}
	return out, nil
}

func (s *AssessmentStore) Deactivate(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&assessmentRow{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "deactivate assessment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "assessment not found")
	}
	return nil
}
