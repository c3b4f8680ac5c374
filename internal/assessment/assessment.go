// Package assessment implements the Assessment Engine of spec §4.6:
// invitation validation, the question/answer turn loop against the
// LLM port, time-budget enforcement, and final-report synthesis.
// Grounded on the LLM port's stateless Chat signature and the
// contract core's state-graph-walking style for session status
// transitions; no teacher precedent exists for an interview-style
// chat loop.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

const (
	generationTemperature  = 0.5
	finalReportTemperature = 0.2
)

type Service struct {
	assessments store.AssessmentStore
	invitations store.InvitationStore
	sessions    store.SessionStore
	llm         ports.LLM
	notify      *notify.Service
	mailer      ports.Mailer
	log         *logrus.Entry
}

func New(assessments store.AssessmentStore, invitations store.InvitationStore, sessions store.SessionStore, llm ports.LLM, notifier *notify.Service, mailer ports.Mailer, log *logrus.Entry) *Service {
	return &Service{assessments: assessments, invitations: invitations, sessions: sessions, llm: llm, notify: notifier, mailer: mailer, log: log}
}

type CreateAssessmentInput struct {
	EmployerID       string
	Title            string
	Profession       string
	RoleTitle        string
	Skills           []string
	Difficulty       domain.Difficulty
	QuestionCount    int
	TimeLimitMinutes int
}

func (s *Service) CreateAssessment(ctx context.Context, in CreateAssessmentInput) (*domain.Assessment, error) {
	if in.QuestionCount < domain.MinQuestionCount || in.QuestionCount > domain.MaxQuestionCount {
		return nil, apperr.WithDetails(apperr.KindValidation, "question_count out of range", map[string]interface{}{
			"min": domain.MinQuestionCount, "max": domain.MaxQuestionCount,
		})
	}
	if in.TimeLimitMinutes < domain.MinTimeLimitMinutes || in.TimeLimitMinutes > domain.MaxTimeLimitMinutes {
		return nil, apperr.WithDetails(apperr.KindValidation, "time_limit_minutes out of range", map[string]interface{}{
			"min": domain.MinTimeLimitMinutes, "max": domain.MaxTimeLimitMinutes,
		})
	}
	a := &domain.Assessment{
		ID:               uuid.NewString(),
		EmployerID:       in.EmployerID,
		Title:            in.Title,
		Profession:       in.Profession,
		RoleTitle:        in.RoleTitle,
		Skills:           in.Skills,
		Difficulty:       in.Difficulty,
		QuestionCount:    in.QuestionCount,
		TimeLimitMinutes: in.TimeLimitMinutes,
		IsActive:         true,
		CreatedAt:        time.Now(),
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAssessment(ctx context.Context, id string) (*domain.Assessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) ListForEmployer(ctx context.Context, employerID string) ([]domain.Assessment, error) {
	return s.assessments.ListForEmployer(ctx, employerID)
}

func (s *Service) DeactivateAssessment(ctx context.Context, id, callerID string) error {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.EmployerID != callerID {
		return apperr.New(apperr.KindForbidden, "only the employer may deactivate this assessment")
	}
	return s.assessments.Deactivate(ctx, id)
}

func (s *Service) CreateInvitation(ctx context.Context, assessmentID, employerID, freelancerID, freelancerEmail string, expiresIn time.Duration) (*domain.AssessmentInvitation, error) {
	inv := &domain.AssessmentInvitation{
		ID:              uuid.NewString(),
		AssessmentID:    assessmentID,
		EmployerID:      employerID,
		FreelancerID:    freelancerID,
		FreelancerEmail: freelancerEmail,
		Token:           uuid.NewString(),
		Status:          domain.InvitationPending,
		ExpiresAt:       time.Now().Add(expiresIn),
		CreatedAt:       time.Now(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	if freelancerID != "" {
		s.emit(ctx, freelancerID, domain.NotificationAssessmentInvite, "Assessment invitation", "You have been invited to take an assessment.", inv.ID)
	} else if freelancerEmail != "" {
		s.emailInvitation(ctx, inv)
	}
	return inv, nil
}

// emailInvitation covers the case a candidate has no account yet: the
// persisted notification log has no recipient to attach to, so the
// invite link goes out over email instead.
func (s *Service) emailInvitation(ctx context.Context, inv *domain.AssessmentInvitation) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("You have been invited to take a technical assessment. Use this token to begin: %s", inv.Token)
	if err := s.mailer.Send(ctx, ports.Email{To: inv.FreelancerEmail, Subject: "You're invited to a technical assessment", Text: body}); err != nil {
		s.log.WithError(err).Warn("failed to email assessment invitation")
	}
}

func (s *Service) GetInvitationByToken(ctx context.Context, token string) (*domain.AssessmentInvitation, error) {
	return s.invitations.GetByToken(ctx, token)
}

func (s *Service) emit(ctx context.Context, recipient string, typ domain.NotificationType, title, body, assessmentID string) {
	if recipient == "" {
		return
	}
	if _, err := s.notify.Emit(ctx, notify.EmitInput{
		Recipient: recipient, Type: typ, Title: title, Body: body, AssessmentID: assessmentID,
	}); err != nil {
		s.log.WithError(err).Warn("failed to emit assessment notification")
	}
}

func decodeJSON(raw string, v interface{}) error {
	return json.Unmarshal([]byte(raw), v)
}
