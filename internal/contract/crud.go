package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/notify"
)

type CreateInput struct {
	CreatorID        string
	Name             string
	Description      string
	Category         string
	Type             domain.ContractType
	Budget           float64
	HourlyRate       float64
	HoursPerWeek     float64
	Currency         string
	ContributorEmail string
	Milestones       []domain.Milestone
}

func (s *Service) CreateContract(ctx context.Context, in CreateInput) (*domain.Contract, error) {
	c := &domain.Contract{
		ID:                 uuid.NewString(),
		CreatorID:          in.CreatorID,
		ContributorEmail:   in.ContributorEmail,
		Name:               in.Name,
		Description:        in.Description,
		Category:           in.Category,
		Type:               in.Type,
		Budget:             in.Budget,
		HourlyRate:         in.HourlyRate,
		HoursPerWeek:       in.HoursPerWeek,
		Currency:           in.Currency,
		PlatformFeePercent: domain.DefaultPlatformFeePercent,
		Status:             domain.ContractStatusDraft,
		Milestones:         in.Milestones,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if c.Type == domain.ContractTypeFixed {
		if len(c.Milestones) > domain.MaxMilestonesPerContract {
			return nil, apperr.WithDetails(apperr.KindValidation, "too many milestones", map[string]interface{}{
				"max": domain.MaxMilestonesPerContract,
			})
		}
		for i := range c.Milestones {
			c.Milestones[i].Order = i + 1
			c.Milestones[i].Status = domain.MilestoneStatusPending
			c.Milestones[i].PaymentStatus = domain.PaymentStatusNone
		}
		if !c.MilestonesBudgetBalanced() {
			return nil, apperr.New(apperr.KindValidation, "milestone budgets must sum to the contract budget")
		}
	}

	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type UpdateInput struct {
	Name         *string
	Description  *string
	Category     *string
	Budget       *float64
	HourlyRate   *float64
	HoursPerWeek *float64
	Status       *domain.ContractStatus
}

// UpdateContract is creator-only and write-protected on status: the
// only status value the general update path may set is "pending" (the
// draft -> pending send), per spec §4.4. Any other status change must
// go through TransitionContract.
func (s *Service) UpdateContract(ctx context.Context, contractID, callerID string, in UpdateInput) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != callerID {
		return nil, apperr.New(apperr.KindForbidden, "only the creator may update this contract")
	}
	if c.Status == domain.ContractStatusCompleted || c.Status == domain.ContractStatusArchived {
		return nil, apperr.New(apperr.KindForbidden, "contract is no longer editable")
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if in.Budget != nil {
		c.Budget = *in.Budget
	}
	if in.HourlyRate != nil {
		c.HourlyRate = *in.HourlyRate
	}
	if in.HoursPerWeek != nil {
		c.HoursPerWeek = *in.HoursPerWeek
	}
	if in.Status != nil {
		if *in.Status != domain.ContractStatusPending || c.Status != domain.ContractStatusDraft {
			return nil, apperr.InvalidTransition(string(c.Status), string(*in.Status), "contract")
		}
		c.Status = domain.ContractStatusPending
		if c.ContributorID != "" {
			s.notifyAsync(ctx, c.ContributorID, domain.NotificationContractInvitation, "New contract invitation", c.Name+" was sent to you.", c.ID)
		} else if c.ContributorEmail != "" {
			s.emailInvitation(ctx, c)
		}
	}

	if !c.MilestonesBudgetBalanced() {
		return nil, apperr.New(apperr.KindValidation, "milestone budgets must sum to the contract budget")
	}

	c.UpdatedAt = time.Now()
	if err := s.contracts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteContract is creator-only, draft-only, per spec §4.4.
func (s *Service) DeleteContract(ctx context.Context, contractID, callerID string) error {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if c.CreatorID != callerID {
		return apperr.New(apperr.KindForbidden, "only the creator may delete this contract")
	}
	if c.Status != domain.ContractStatusDraft {
		return apperr.New(apperr.KindForbidden, "only draft contracts may be deleted")
	}
	return s.contracts.Delete(ctx, contractID)
}

func (s *Service) GetContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	return s.contracts.GetByID(ctx, contractID)
}

func (s *Service) ListForUser(ctx context.Context, userID string, page, limit int) ([]domain.Contract, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.contracts.ListForUser(ctx, userID, page, limit)
}

func (s *Service) notifyAsync(ctx context.Context, recipient string, typ domain.NotificationType, title, body, contractID string) {
	if recipient == "" {
		return
	}
	if _, err := s.notify.Emit(ctx, notify.EmitInput{
		Recipient: recipient, Type: typ, Title: title, Body: body, ContractID: contractID,
	}); err != nil {
		s.log.WithError(err).Warn("failed to emit contract notification")
	}
}
