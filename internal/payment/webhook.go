package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/metrics"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/ports"
)

// HandleWebhook verifies the gateway signature and reconciles the
// event against milestone and balance state, per spec §4.5. Only a
// signature failure is surfaced as an error so the HTTP layer can
// answer 400; every other outcome is logged via metrics and the
// endpoint still answers 200, since "the webhook endpoint always
// responds 200 after processing" to avoid retries for logic errors.
func (o *Orchestrator) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := o.gateway.VerifyWebhook(payload, signature, o.webhookKey)
	if err != nil {
		metrics.PaymentWebhooks.WithLabelValues("unknown", "signature_invalid").Inc()
		return apperr.New(apperr.KindValidation, "invalid webhook signature")
	}

	switch event.Type {
	case ports.EventPaymentIntentSucceeded:
		o.reconcileSucceeded(ctx, event)
	case ports.EventPaymentIntentFailed:
		o.reconcileFailed(ctx, event)
	default:
		metrics.PaymentWebhooks.WithLabelValues(string(event.Type), "ignored").Inc()
	}
	return nil
}

func (o *Orchestrator) reconcileSucceeded(ctx context.Context, event *ports.WebhookEvent) {
	label := string(event.Type)
	contract, milestone, order, ok := o.lookupByMetadata(ctx, label, event)
	if !ok {
		return
	}
	if milestone.PaymentStatus == domain.PaymentStatusSucceeded {
		metrics.PaymentWebhooks.WithLabelValues(label, "idempotent_skip").Inc()
		return
	}

	payout := domain.Payout(milestone.Budget, contract.PlatformFeePercent)

	updated, applied, err := o.contracts.CompareAndSetMilestoneStatus(ctx, contract.ID, order, milestone.Status, domain.MilestoneStatusPaid, func(m *domain.Milestone) {
		now := time.Now()
		m.PaymentStatus = domain.PaymentStatusSucceeded
		m.PaidAt = &now
		m.PayoutAmount = payout
		m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
			Action: "milestone_paid", Actor: domain.ActorSystem, Message: "payment succeeded", Timestamp: now,
		})
	})
	if err != nil || !applied {
		metrics.PaymentWebhooks.WithLabelValues(label, "apply_failed").Inc()
		return
	}

	if err := o.users.IncrementBalance(ctx, updated.ContributorID, payout, payout); err != nil {
		o.log.WithError(err).Error("failed to credit contributor balance after successful payment")
	}

	metrics.PaymentWebhooks.WithLabelValues(label, "applied").Inc()

	o.emit(ctx, updated.ContributorID, domain.NotificationMilestonePaid, "Milestone paid", milestone.Name+" has been paid out.", updated.ID)
	o.emit(ctx, updated.CreatorID, domain.NotificationPaymentReceipt, "Payment receipt", milestone.Name+" payment completed.", updated.ID)

	if updated.AllMilestonesPaid() {
		o.completeContract(ctx, updated)
	}
}

func (o *Orchestrator) reconcileFailed(ctx context.Context, event *ports.WebhookEvent) {
	label := string(event.Type)
	contract, milestone, order, ok := o.lookupByMetadata(ctx, label, event)
	if !ok {
		return
	}

	updated, _, err := o.contracts.CompareAndSetMilestoneStatus(ctx, contract.ID, order, milestone.Status, milestone.Status, func(m *domain.Milestone) {
		now := time.Now()
		m.PaymentStatus = domain.PaymentStatusFailed
		m.PaymentFailedAt = &now
		m.PaymentError = event.Intent.Error
		m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
			Action: "payment_failed", Actor: domain.ActorSystem, Message: event.Intent.Error, Timestamp: now,
		})
	})
	if err != nil {
		metrics.PaymentWebhooks.WithLabelValues(label, "apply_failed").Inc()
		return
	}
	metrics.PaymentWebhooks.WithLabelValues(label, "applied").Inc()

	o.emit(ctx, updated.CreatorID, domain.NotificationPaymentFailed, "Payment failed", milestone.Name+" payment failed.", updated.ID)
	o.emit(ctx, updated.ContributorID, domain.NotificationPaymentDelayed, "Payment delayed", milestone.Name+" payment is delayed.", updated.ID)
}

func (o *Orchestrator) lookupByMetadata(ctx context.Context, label string, event *ports.WebhookEvent) (*domain.Contract, *domain.Milestone, int, bool) {
	contractID := event.Intent.Metadata["contract_id"]
	order, err := strconv.Atoi(event.Intent.Metadata["milestone_index"])
	if contractID == "" || err != nil {
		metrics.PaymentWebhooks.WithLabelValues(label, "bad_metadata").Inc()
		return nil, nil, 0, false
	}
	contract, err := o.contracts.GetByID(ctx, contractID)
	if err != nil {
		metrics.PaymentWebhooks.WithLabelValues(label, "contract_not_found").Inc()
		return nil, nil, 0, false
	}
	milestone := findMilestone(contract, order)
	if milestone == nil {
		metrics.PaymentWebhooks.WithLabelValues(label, "milestone_not_found").Inc()
		return nil, nil, 0, false
	}
	return contract, milestone, order, true
}

// completeContract fires the auto-complete transition of spec §4.4
// when a payment-success reconciliation observes every milestone paid.
func (o *Orchestrator) completeContract(ctx context.Context, contract *domain.Contract) {
	applied, err := o.contracts.CompareAndSetStatus(ctx, contract.ID, domain.ContractStatusActive, domain.ContractStatusCompleted)
	if err != nil || !applied {
		return
	}
	o.emit(ctx, contract.CreatorID, domain.NotificationContractCompleted, "Contract completed", contract.Name+" is now complete.", contract.ID)
	o.emit(ctx, contract.ContributorID, domain.NotificationContractCompleted, "Contract completed", contract.Name+" is now complete.", contract.ID)
}

func (o *Orchestrator) emit(ctx context.Context, recipient string, typ domain.NotificationType, title, body, contractID string) {
	if recipient == "" {
		return
	}
	if _, err := o.notify.Emit(ctx, notify.EmitInput{
		Recipient: recipient, Type: typ, Title: title, Body: body, ContractID: contractID,
	}); err != nil {
		o.log.WithError(err).Warn("failed to emit payment notification")
	}
}
