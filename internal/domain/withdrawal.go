package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalRejected   WithdrawalStatus = "rejected"
)

type Withdrawal struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"owner_id"`
	Amount           float64          `json:"amount"`
	Currency         string           `json:"currency"`
	Status           WithdrawalStatus `json:"status"`
	BankInfoSnapshot BankInfo         `json:"bank_info_snapshot"`
	AdminNote        string           `json:"admin_note,omitempty"`
	ProcessorRef     string           `json:"processor_reference,omitempty"`
	RequestedAt      time.Time        `json:"requested_at"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
}

func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

var withdrawalTransitions = map[WithdrawalStatus]map[WithdrawalStatus]bool{
	WithdrawalPending:    {WithdrawalProcessing: true, WithdrawalCompleted: true, WithdrawalRejected: true},
	WithdrawalProcessing: {WithdrawalCompleted: true, WithdrawalRejected: true},
}

func CanTransitionWithdrawal(from, to WithdrawalStatus) bool {
	edges, ok := withdrawalTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}
