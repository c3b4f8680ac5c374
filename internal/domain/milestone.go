package domain

import "time"

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusInProgress MilestoneStatus = "in-progress"
	MilestoneStatusSubmitted  MilestoneStatus = "submitted"
	MilestoneStatusApproved   MilestoneStatus = "approved"
	MilestoneStatusPaid       MilestoneStatus = "paid"
	MilestoneStatusRejected   MilestoneStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentStatusNone       PaymentStatus = "none"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
)

type ActivityActor string

const (
	ActorCreator     ActivityActor = "creator"
	ActorContributor ActivityActor = "contributor"
	ActorSystem      ActivityActor = "system"
)

type ActivityEntry struct {
	Action    string        `json:"action"`
	Actor     ActivityActor `json:"actor"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type Milestone struct {
	Order            int             `json:"order"`
	Name             string          `json:"name"`
	Budget           float64         `json:"budget"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	Status           MilestoneStatus `json:"status"`
	SubmissionNote   string          `json:"submission_note,omitempty"`
	SubmissionURL    string          `json:"submission_url,omitempty"`
	PaymentIntentID  string          `json:"payment_intent_id,omitempty"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentAttempts  int             `json:"payment_attempts"`
	PaymentError     string          `json:"payment_error,omitempty"`
	PayoutAmount     float64         `json:"payout_amount,omitempty"`
	RevisionCount    int             `json:"revision_count"`
	ActivityLog      []ActivityEntry `json:"activity_log,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	PaymentFailedAt  *time.Time      `json:"payment_failed_at,omitempty"`
}

// milestoneTransitions is the state graph of spec §4.4. The edge
// rejected -> submitted models a resubmission; rejected -> in-progress
// models the contributor picking the work back up before resubmitting.
var milestoneTransitions = map[MilestoneStatus]map[MilestoneStatus]bool{
	MilestoneStatusPending:    {MilestoneStatusInProgress: true, MilestoneStatusSubmitted: true},
	MilestoneStatusInProgress: {MilestoneStatusSubmitted: true},
	MilestoneStatusSubmitted:  {MilestoneStatusApproved: true, MilestoneStatusRejected: true},
	MilestoneStatusApproved:   {MilestoneStatusPaid: true},
	MilestoneStatusRejected:   {MilestoneStatusInProgress: true, MilestoneStatusSubmitted: true},
}

func CanTransitionMilestone(from, to MilestoneStatus) bool {
	edges, ok := milestoneTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// Payout is budget * (1 - fee_pct/100), per the GLOSSARY definition.
func Payout(budget, platformFeePercent float64) float64 {
	return budget * (1 - platformFeePercent/100)
}
