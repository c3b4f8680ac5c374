package contract

import (
	"context"
	"time"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

// TransitionContract walks the contract state graph of spec §4.4.
// The send (draft -> pending) is refused here: UpdateContract, which is
// creator-only, performs it. Only creator may reject-from-pending/archive;
// only contributor may accept or reject-from-pending once bound.
func (s *Service) TransitionContract(ctx context.Context, contractID, callerID string, to domain.ContractStatus) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionContract(c.Status, to) || to == domain.ContractStatusPending {
		return nil, apperr.InvalidTransition(string(c.Status), string(to), "contract")
	}
	if err := authorizeContractTransition(c, callerID, to); err != nil {
		return nil, err
	}

	applied, err := s.contracts.CompareAndSetStatus(ctx, contractID, c.Status, to)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.New(apperr.KindConflict, "contract status changed concurrently")
	}
	c.Status = to
	c.UpdatedAt = time.Now()

	s.emitTransitionNotifications(ctx, c, to)
	return c, nil
}

func authorizeContractTransition(c *domain.Contract, callerID string, to domain.ContractStatus) error {
	isCreator := callerID == c.CreatorID
	isContributor := callerID != "" && callerID == c.ContributorID

	switch {
	case to == domain.ContractStatusActive:
		if !isContributor {
			return apperr.New(apperr.KindForbidden, "only the contributor may accept a contract")
		}
	case to == domain.ContractStatusRejected:
		if !isCreator && !isContributor {
			return apperr.New(apperr.KindForbidden, "only the creator or contributor may reject a contract")
		}
	case to == domain.ContractStatusArchived:
		if !isCreator {
			return apperr.New(apperr.KindForbidden, "only the creator may archive a contract")
		}
	case to == domain.ContractStatusDisputed, to == domain.ContractStatusCompleted:
		if !isCreator && !isContributor {
			return apperr.New(apperr.KindForbidden, "only a party to the contract may perform this transition")
		}
	}
	return nil
}

func (s *Service) emitTransitionNotifications(ctx context.Context, c *domain.Contract, to domain.ContractStatus) {
	switch to {
	case domain.ContractStatusActive:
		s.notifyAsync(ctx, c.CreatorID, domain.NotificationContractAccepted, "Contract accepted", c.Name+" was accepted.", c.ID)
	case domain.ContractStatusRejected:
		s.notifyAsync(ctx, c.CreatorID, domain.NotificationContractRejected, "Contract rejected", c.Name+" was rejected.", c.ID)
		s.notifyAsync(ctx, c.ContributorID, domain.NotificationContractRejected, "Contract rejected", c.Name+" was rejected.", c.ID)
	case domain.ContractStatusDisputed:
		s.notifyAsync(ctx, c.CreatorID, domain.NotificationContractDisputed, "Contract disputed", c.Name+" is now disputed.", c.ID)
		s.notifyAsync(ctx, c.ContributorID, domain.NotificationContractDisputed, "Contract disputed", c.Name+" is now disputed.", c.ID)
	case domain.ContractStatusCompleted:
		s.notifyAsync(ctx, c.CreatorID, domain.NotificationContractCompleted, "Contract completed", c.Name+" is complete.", c.ID)
		s.notifyAsync(ctx, c.ContributorID, domain.NotificationContractCompleted, "Contract completed", c.Name+" is complete.", c.ID)
	}
}

// EnsureLinked implements the auto-linking rule of spec §4.4: a
// pending, email-addressed contract binds to a user record on
// whichever comes first, a view or a mutation.
func (s *Service) EnsureLinked(ctx context.Context, c *domain.Contract, viewerID, viewerEmail string) (*domain.Contract, error) {
	if c.ContributorID != "" || c.ContributorEmail == "" || viewerEmail == "" {
		return c, nil
	}
	if c.ContributorEmail != viewerEmail {
		return c, nil
	}
	linked, err := s.contracts.LinkContributorIfUnset(ctx, c.ID, viewerID)
	if err != nil {
		return nil, err
	}
	if linked {
		c.ContributorID = viewerID
	}
	return c, nil
}
