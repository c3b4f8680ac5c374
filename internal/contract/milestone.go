package contract

import (
	"context"
	"time"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type MilestoneAction string

const (
	MilestoneActionSubmit  MilestoneAction = "submit"
	MilestoneActionApprove MilestoneAction = "approve"
	MilestoneActionReject  MilestoneAction = "reject"
)

type MilestonePayload struct {
	SubmissionNote  string
	SubmissionURL   string
	Feedback        string
	PaymentMethodID string
}

// UpdateMilestone drives the per-milestone state graph of spec §4.4.
// Submission is contributor-only; approval and rejection are
// creator-only. Rejection requires non-empty feedback and increments
// revision_count. The activity log distinguishes a first submission
// from a resubmission based on whether the prior state was rejected.
func (s *Service) UpdateMilestone(ctx context.Context, contractID, callerID string, order int, action MilestoneAction, payload MilestonePayload) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.Type != domain.ContractTypeFixed {
		return nil, apperr.New(apperr.KindPrecondition, "hourly contracts do not support milestone actions")
	}
	milestone := findMilestone(c, order)
	if milestone == nil {
		return nil, apperr.New(apperr.KindNotFound, "milestone not found")
	}

	var next domain.MilestoneStatus
	switch action {
	case MilestoneActionSubmit:
		if callerID != c.ContributorID {
			return nil, apperr.New(apperr.KindForbidden, "only the contributor may submit a milestone")
		}
		next = domain.MilestoneStatusSubmitted
	case MilestoneActionApprove:
		if callerID != c.CreatorID {
			return nil, apperr.New(apperr.KindForbidden, "only the creator may approve a milestone")
		}
		next = domain.MilestoneStatusApproved
	case MilestoneActionReject:
		if callerID != c.CreatorID {
			return nil, apperr.New(apperr.KindForbidden, "only the creator may reject a milestone")
		}
		if payload.Feedback == "" {
			return nil, apperr.New(apperr.KindValidation, "rejection requires feedback")
		}
		next = domain.MilestoneStatusRejected
	default:
		return nil, apperr.New(apperr.KindValidation, "unknown milestone action")
	}

	if !domain.CanTransitionMilestone(milestone.Status, next) {
		return nil, apperr.InvalidTransition(string(milestone.Status), string(next), "milestone")
	}

	wasRejected := milestone.Status == domain.MilestoneStatusRejected
	expected := milestone.Status

	updated, applied, err := s.contracts.CompareAndSetMilestoneStatus(ctx, contractID, order, expected, next, func(m *domain.Milestone) {
		now := time.Now()
		switch action {
		case MilestoneActionSubmit:
			m.SubmissionNote = payload.SubmissionNote
			m.SubmissionURL = payload.SubmissionURL
			label := "milestone_submitted"
			if wasRejected {
				label = "milestone_resubmitted"
			}
			m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
				Action: label, Actor: domain.ActorContributor, Message: payload.SubmissionNote, Timestamp: now,
			})
		case MilestoneActionReject:
			m.RevisionCount++
			m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
				Action: "milestone_rejected", Actor: domain.ActorCreator, Message: payload.Feedback, Timestamp: now,
			})
		case MilestoneActionApprove:
			m.ActivityLog = append(m.ActivityLog, domain.ActivityEntry{
				Action: "milestone_approved", Actor: domain.ActorCreator, Message: "", Timestamp: now,
			})
		}
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.New(apperr.KindConflict, "milestone status changed concurrently")
	}

	s.emitMilestoneNotifications(ctx, updated, order, action)

	if action == MilestoneActionApprove {
		s.chargeOnApproval(ctx, updated, order, payload.PaymentMethodID)
	}

	return updated, nil
}

func (s *Service) chargeOnApproval(ctx context.Context, c *domain.Contract, order int, paymentMethodID string) {
	employer, err := s.users.GetByID(ctx, c.CreatorID)
	if err != nil {
		s.log.WithError(err).Error("failed to load employer for milestone charge")
		return
	}
	if err := s.charger.ChargeMilestone(ctx, employer, c, order, paymentMethodID); err != nil {
		s.log.WithError(err).Warn("milestone charge did not succeed, left for creator retry")
	}
}

func (s *Service) emitMilestoneNotifications(ctx context.Context, c *domain.Contract, order int, action MilestoneAction) {
	milestone := findMilestone(c, order)
	name := ""
	if milestone != nil {
		name = milestone.Name
	}
	switch action {
	case MilestoneActionSubmit:
		s.notifyAsync(ctx, c.CreatorID, domain.NotificationMilestoneSubmitted, "Milestone submitted", name+" was submitted for review.", c.ID)
	case MilestoneActionApprove:
		s.notifyAsync(ctx, c.ContributorID, domain.NotificationMilestoneApproved, "Milestone approved", name+" was approved.", c.ID)
	case MilestoneActionReject:
		s.notifyAsync(ctx, c.ContributorID, domain.NotificationMilestoneRejected, "Milestone needs revision", name+" was sent back for revision.", c.ID)
	}
}

func findMilestone(c *domain.Contract, order int) *domain.Milestone {
	for i := range c.Milestones {
		if c.Milestones[i].Order == order {
			return &c.Milestones[i]
		}
	}
	return nil
}
