// Package payment implements the Payment Orchestrator of spec §4.5:
// milestone charge flow, signed webhook reconciliation, and the
// withdrawal lifecycle. There is no teacher precedent for any of
// this — StackWhiz-Portfolio_Backend never touches money — so the
// shape here follows the spec's own pseudocode, reusing the atomic
// compare-and-set idiom established in internal/store/postgres.
package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

type Orchestrator struct {
	gateway     ports.PaymentGateway
	contracts   store.ContractStore
	users       store.UserStore
	withdrawals store.WithdrawalStore
	notify      *notify.Service
	webhookKey  string
	log         *logrus.Entry
}

func New(gateway ports.PaymentGateway, contracts store.ContractStore, users store.UserStore, withdrawals store.WithdrawalStore, notifier *notify.Service, webhookSecret string, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		gateway:     gateway,
		contracts:   contracts,
		users:       users,
		withdrawals: withdrawals,
		notify:      notifier,
		webhookKey:  webhookSecret,
		log:         log,
	}
}

// ChargeMilestone is the charge flow of spec §4.5, shared by the
// auto-charge-on-approve path and the explicit retry endpoint:
// ensure a gateway customer exists, pick a payment instrument, create
// and auto-confirm a payment intent, and record the outcome on the
// milestone. A gateway error records payment_status=failed on the
// milestone and returns a KindUnavailable error; approval itself is
// already committed, so the creator can retry.
func (o *Orchestrator) ChargeMilestone(ctx context.Context, employer *domain.User, contract *domain.Contract, order int, paymentMethodID string) error {
	milestone := findMilestone(contract, order)
	if milestone == nil {
		return apperr.New(apperr.KindNotFound, "milestone not found")
	}

	customerID, err := o.ensureCustomer(ctx, employer)
	if err != nil {
		return err
	}

	if paymentMethodID == "" {
		methods, err := o.gateway.ListPaymentMethods(ctx, customerID)
		if err != nil || len(methods) == 0 {
			return o.markChargeFailed(ctx, contract.ID, order, "no payment method available")
		}
		paymentMethodID = methods[0].ID
		for _, m := range methods {
			if m.Default {
				paymentMethodID = m.ID
				break
			}
		}
	}

	intent, err := o.gateway.CreatePaymentIntent(ctx, milestone.Budget, contract.Currency, customerID, map[string]string{
		"contract_id":          contract.ID,
		"milestone_index":      strconv.Itoa(order),
		"milestone_name":       milestone.Name,
		"platform_fee_percent": strconv.FormatFloat(contract.PlatformFeePercent, 'f', 2, 64),
	})
	if err != nil {
		return o.markChargeFailed(ctx, contract.ID, order, err.Error())
	}

	confirmed, err := o.gateway.ConfirmPaymentIntent(ctx, intent.ID, paymentMethodID)
	if err != nil || confirmed.Status == ports.IntentFailed {
		msg := "payment confirmation failed"
		if err != nil {
			msg = err.Error()
		} else if confirmed.Error != "" {
			msg = confirmed.Error
		}
		return o.markChargeFailed(ctx, contract.ID, order, msg)
	}

	_, _, err = o.contracts.CompareAndSetMilestoneStatus(ctx, contract.ID, order, milestone.Status, milestone.Status, func(m *domain.Milestone) {
		m.PaymentStatus = domain.PaymentStatusProcessing
		m.PaymentIntentID = confirmed.ID
		m.PaymentAttempts++
		m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
			Action: "payment_initiated", Actor: domain.ActorSystem,
			Message: "payment intent created", Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}

	return nil
}

func (o *Orchestrator) markChargeFailed(ctx context.Context, contractID string, order int, reason string) error {
	_, _, err := o.contracts.CompareAndSetMilestoneStatus(ctx, contractID, order, domain.MilestoneStatusApproved, domain.MilestoneStatusApproved, func(m *domain.Milestone) {
		m.PaymentStatus = domain.PaymentStatusFailed
		m.PaymentError = reason
		m.PaymentAttempts++
		m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
			Action: "payment_failed", Actor: domain.ActorSystem, Message: reason, Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}
	return apperr.New(apperr.KindUnavailable, "charge failed: "+reason)
}

func findMilestone(c *domain.Contract, order int) *domain.Milestone {
	for i := range c.Milestones {
		if c.Milestones[i].Order == order {
			return &c.Milestones[i]
		}
	}
	return nil
}

// ensureCustomer lazily creates and persists the gateway customer
// handle the first time a user needs one, shared by the charge flow
// and the standalone setup-intent/list-methods endpoints.
func (o *Orchestrator) ensureCustomer(ctx context.Context, user *domain.User) (string, error) {
	if user.PaymentCustomerHandle != "" {
		return user.PaymentCustomerHandle, nil
	}
	created, err := o.gateway.CreateCustomer(ctx, user.Email, user.DisplayName)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "creating payment customer", err)
	}
	user.PaymentCustomerHandle = created
	if err := o.users.Update(ctx, user); err != nil {
		o.log.WithError(err).Warn("failed to persist payment customer handle")
	}
	return created, nil
}

// CreateSetupIntent backs POST /api/payments/setup-intent: a client
// secret the frontend uses to save a card off-session, per spec §4.5.
func (o *Orchestrator) CreateSetupIntent(ctx context.Context, user *domain.User) (string, error) {
	customerID, err := o.ensureCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	secret, err := o.gateway.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "creating setup intent", err)
	}
	return secret, nil
}

// ListPaymentMethods backs GET /api/payments/methods. A user with no
// gateway customer yet simply has no saved methods.
func (o *Orchestrator) ListPaymentMethods(ctx context.Context, user *domain.User) ([]ports.PaymentMethod, error) {
	if user.PaymentCustomerHandle == "" {
		return nil, nil
	}
	methods, err := o.gateway.ListPaymentMethods(ctx, user.PaymentCustomerHandle)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "listing payment methods", err)
	}
	return methods, nil
}

// ListWithdrawalsForUser backs GET /api/payments/withdrawals.
func (o *Orchestrator) ListWithdrawalsForUser(ctx context.Context, userID string, page, limit int) ([]domain.Withdrawal, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return o.withdrawals.ListForUser(ctx, userID, page, limit)
}

// ListAllWithdrawals backs the supplemented admin worklist endpoint
// GET /api/payments/admin/withdrawals.
func (o *Orchestrator) ListAllWithdrawals(ctx context.Context, status string, page, limit int) ([]domain.Withdrawal, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return o.withdrawals.ListAll(ctx, status, page, limit)
}
