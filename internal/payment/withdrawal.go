package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

// RequestWithdrawal is the withdrawal flow of spec §4.5: require bank
// info, reject any open withdrawal, debit the balance compare-and-set
// style, and persist a bank-info snapshot so a later profile edit
// can't retroactively change where funds were understood to go.
func (o *Orchestrator) RequestWithdrawal(ctx context.Context, user *domain.User, amount float64, currency string) (*domain.Withdrawal, error) {
	if user.BankInfo == nil {
		return nil, apperr.New(apperr.KindPrecondition, "bank info required before requesting a withdrawal")
	}
	hasOpen, err := o.withdrawals.HasOpenForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if hasOpen {
		return nil, apperr.New(apperr.KindConflict, "a withdrawal is already pending or processing")
	}

	ok, err := o.users.DecrementIfSufficient(ctx, user.ID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindPrecondition, "insufficient balance")
	}

	w := &domain.Withdrawal{
		ID:               uuid.NewString(),
		OwnerID:          user.ID,
		Amount:           amount,
		Currency:         currency,
		Status:           domain.WithdrawalPending,
		BankInfoSnapshot: *user.BankInfo,
		RequestedAt:      time.Now(),
	}
	if err := o.withdrawals.Create(ctx, w); err != nil {
		if refundErr := o.users.IncrementBalance(ctx, user.ID, amount, 0); refundErr != nil {
			o.log.WithError(refundErr).Error("failed to refund balance after withdrawal create failure")
		}
		return nil, err
	}

	o.emit(ctx, user.ID, domain.NotificationWithdrawalRequest, "Withdrawal requested", "Your withdrawal request has been received.", "")
	return w, nil
}

// ProcessWithdrawal is the admin-side transition of spec §4.5:
// completed is irreversible, rejected refunds the balance, processing
// is an intermediate step. A withdrawal already in a terminal state
// cannot be re-processed — CompareAndSetStatus enforces that.
func (o *Orchestrator) ProcessWithdrawal(ctx context.Context, withdrawalID string, next domain.WithdrawalStatus, adminNote string) (*domain.Withdrawal, error) {
	w, err := o.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, apperr.New(apperr.KindInvalidTransition, "withdrawal already in a terminal state")
	}
	if !domain.CanTransitionWithdrawal(w.Status, next) {
		return nil, apperr.InvalidTransition(string(w.Status), string(next), "withdrawal")
	}

	applied, err := o.withdrawals.CompareAndSetStatus(ctx, withdrawalID, w.Status, next)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.New(apperr.KindConflict, "withdrawal status changed concurrently")
	}

	w.Status = next
	w.AdminNote = adminNote
	now := time.Now()
	w.ProcessedAt = &now
	if err := o.withdrawals.Update(ctx, w); err != nil {
		return nil, err
	}

	switch next {
	case domain.WithdrawalRejected:
		if err := o.users.IncrementBalance(ctx, w.OwnerID, w.Amount, 0); err != nil {
			o.log.WithError(err).Error("failed to refund balance on rejected withdrawal")
		}
		o.emit(ctx, w.OwnerID, domain.NotificationWithdrawalRejected, "Withdrawal rejected", adminNote, "")
	case domain.WithdrawalCompleted:
		o.emit(ctx, w.OwnerID, domain.NotificationWithdrawalDone, "Withdrawal completed", "Your withdrawal has been sent.", "")
	}

	return w, nil
}
