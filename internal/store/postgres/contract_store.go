package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type ContractStore struct {
	db *gorm.DB
}

func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db}
}

func (s *ContractStore) Create(ctx context.Context, c *domain.Contract) error {
	row := toContractRow(c)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "create contract", err)
	}
	return nil
}

func (s *ContractStore) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	var row contractRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "contract not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get contract", err)
	}
	return fromContractRow(&row), nil
}

func (s *ContractStore) Update(ctx context.Context, c *domain.Contract) error {
	row := toContractRow(c)
	if err := s.db.WithContext(ctx).Model(&contractRow{}).Where("id = ?", c.ID).Updates(row).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "update contract", err)
	}
	return nil
}

func (s *ContractStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&contractRow{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "delete contract", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "contract not found")
	}
	return nil
}

func (s *ContractStore) ListForUser(ctx context.Context, userID string, page, limit int) ([]domain.Contract, int64, error) {
	var rows []contractRow
	var total int64

	q := s.db.WithContext(ctx).Model(&contractRow{}).
		Where("creator_id = ? OR contributor_id = ?", userID, userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count contracts", err)
	}

	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list contracts", err)
	}

	out := make([]domain.Contract, len(rows))
	for i := range rows {
		out[i] = *fromContractRow(&rows[i])
	}
	return out, total, nil
}

// CompareAndSetStatus is the contract-level compare-and-set of the
// status state graph: the WHERE clause pins the precondition so a
// stale read never clobbers a status another request already moved.
func (s *ContractStore) CompareAndSetStatus(ctx context.Context, contractID string, expectedCurrent, next domain.ContractStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&contractRow{}).
		Where("id = ? AND status = ?", contractID, string(expectedCurrent)).
		Update("status", string(next))
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindInternal, "transition contract", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// LinkContributorIfUnset writes contributor_id only the first time a
// contributor interacts with a contract, per the one-time auto-link
// invariant; the WHERE clause makes the write a no-op on every
// subsequent call instead of requiring a separate existence check.
func (s *ContractStore) LinkContributorIfUnset(ctx context.Context, contractID, userID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&contractRow{}).
		Where("id = ? AND (contributor_id = '' OR contributor_id IS NULL)", contractID).
		Update("contributor_id", userID)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindInternal, "link contributor", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CompareAndSetMilestoneStatus performs the milestone-level
// compare-and-set transition. Milestones live as a jsonb column rather
// than a child table (mirroring the document-store shape the spec
// assumes), so the compare-and-set has to happen application-side
// inside a transaction with a row lock, rather than as a single SQL
// WHERE clause the way the top-level contract status transition does.
func (s *ContractStore) CompareAndSetMilestoneStatus(ctx context.Context, contractID string, order int, expectedCurrent, next domain.MilestoneStatus, mutate func(m *domain.Milestone)) (*domain.Contract, bool, error) {
	var result *domain.Contract
	var applied bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row contractRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "contract not found")
			}
			return apperr.Wrap(apperr.KindInternal, "lock contract", err)
		}

		contract := fromContractRow(&row)
		idx := -1
		for i := range contract.Milestones {
			if contract.Milestones[i].Order == order {
				idx = i
				break
			}
		}
		if idx == -1 {
			return apperr.New(apperr.KindNotFound, "milestone not found")
		}

		if contract.Milestones[idx].Status != expectedCurrent {
			applied = false
			result = contract
			return nil
		}

		contract.Milestones[idx].Status = next
		if mutate != nil {
			mutate(&contract.Milestones[idx])
		}

		updated := toContractRow(contract)
		if err := tx.Model(&contractRow{}).Where("id = ?", contractID).
			Update("milestones", updated.Milestones).Error; err != nil {
			return apperr.Wrap(apperr.KindInternal, "update milestone", err)
		}

		applied = true
		result = contract
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, applied, nil
}
