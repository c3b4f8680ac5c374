package domain

import "time"

type NotificationType string

const (
	NotificationContractInvitation NotificationType = "contract_invitation"
	NotificationContractAccepted   NotificationType = "contract_accepted"
	NotificationContractRejected   NotificationType = "contract_rejected"
	NotificationContractCompleted  NotificationType = "contract_completed"
	NotificationContractDisputed   NotificationType = "contract_disputed"
	NotificationMilestoneSubmitted NotificationType = "milestone_submitted"
	NotificationMilestoneApproved  NotificationType = "milestone_approved"
	NotificationMilestoneRejected  NotificationType = "milestone_rejected"
	NotificationMilestonePaid      NotificationType = "milestone_paid"
	NotificationPaymentReceipt     NotificationType = "payment_receipt"
	NotificationPaymentFailed      NotificationType = "payment_failed"
	NotificationPaymentDelayed     NotificationType = "payment_delayed"
	NotificationWithdrawalRequest  NotificationType = "withdrawal_requested"
	NotificationWithdrawalDone     NotificationType = "withdrawal_completed"
	NotificationWithdrawalRejected NotificationType = "withdrawal_rejected"
	NotificationAssessmentInvite   NotificationType = "assessment_invitation"
	NotificationAssessmentComplete NotificationType = "assessment_completed"
	NotificationAssessmentExpired  NotificationType = "assessment_expired"
	NotificationEvaluationReady    NotificationType = "evaluation_ready"
	NotificationSystem             NotificationType = "system"
)

const NotificationTTL = 90 * 24 * time.Hour

type Notification struct {
	ID           string                 `json:"id"`
	RecipientID  string                 `json:"recipient_id"`
	Type         NotificationType       `json:"type"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body"`
	ContractID   string                 `json:"contract_id,omitempty"`
	AssessmentID string                 `json:"assessment_id,omitempty"`
	ActorID      string                 `json:"actor_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Read         bool                   `json:"read"`
	ReadAt       *time.Time             `json:"read_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	Seq          int64                  `json:"seq"`
}
