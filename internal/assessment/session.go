package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/ports"
)

// StartSession validates the invitation, asks the LLM for question
// #1 under the assessor-persona system prompt of spec §4.6a, and
// creates the session with one AI message.
func (s *Service) StartSession(ctx context.Context, token, freelancerID string) (*domain.AssessmentSession, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Expired(time.Now()) {
		return nil, apperr.New(apperr.KindGone, "invitation has expired")
	}
	if inv.Status == domain.InvitationCompleted {
		return nil, apperr.New(apperr.KindInvalidTransition, "invitation already completed")
	}
	inProgress, err := s.invitations.HasInProgressSession(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if inProgress {
		return nil, apperr.New(apperr.KindConflict, "a session is already in progress for this invitation")
	}

	a, err := s.assessments.GetByID(ctx, inv.AssessmentID)
	if err != nil {
		return nil, err
	}

	systemPrompt := assessorSystemPrompt(a)
	firstQuestion, err := s.askLLM(ctx, []ports.ChatMessage{
		{Role: ports.ChatRoleSystem, Content: systemPrompt},
		{Role: ports.ChatRoleUser, Content: "Ask question 1."},
	}, generationTemperature)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "assessment question generation failed", err)
	}

	index := 1
	session := &domain.AssessmentSession{
		ID:                   uuid.NewString(),
		InvitationID:         inv.ID,
		AssessmentID:         a.ID,
		FreelancerID:         freelancerID,
		TotalQuestions:       a.QuestionCount,
		TimeLimitMinutes:     a.TimeLimitMinutes,
		StartedAt:            time.Now(),
		Status:               domain.SessionInProgress,
		CurrentQuestionIndex: index,
		Messages: []domain.SessionMessage{
			{Role: domain.MessageRoleAI, Content: firstQuestion, QuestionIndex: &index, Timestamp: time.Now()},
		},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	inv.Status = domain.InvitationAccepted
	if err := s.invitations.Update(ctx, inv); err != nil {
		s.log.WithError(err).Warn("failed to mark invitation accepted")
	}

	return session, nil
}

type turnResponse struct {
	Evaluation   string  `json:"evaluation"`
	Score        float64 `json:"score"`
	NextQuestion string  `json:"next_question"`
	Hint         string  `json:"hint"`
}

type finalReportResponse struct {
	Score      float64            `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Summary    string             `json:"summary"`
	Strengths  []string           `json:"strengths"`
	Weaknesses []string           `json:"weaknesses"`
}

// SendMessage is the turn loop of spec §4.6: appends the user's
// answer, enforces the time budget, asks the LLM to evaluate the
// answer and (if more questions remain) produce the next one, and on
// the last question triggers final-report synthesis.
func (s *Service) SendMessage(ctx context.Context, sessionID, freelancerID, content string) (*domain.AssessmentSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.FreelancerID != freelancerID {
		return nil, apperr.New(apperr.KindForbidden, "not your assessment session")
	}
	if session.Status.Terminal() {
		return nil, apperr.New(apperr.KindInvalidTransition, "session is no longer active")
	}

	now := time.Now()
	if session.TimedOut(now) {
		session.Status = domain.SessionTimedOut
		session.TimeSpentSeconds = int(now.Sub(session.StartedAt).Seconds())
		session.CompletedAt = &now
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.KindGone, "assessment session has timed out")
	}

	session.Messages = append(session.Messages, domain.SessionMessage{
		Role: domain.MessageRoleUser, Content: content, Timestamp: now,
	})

	a, err := s.assessments.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return nil, err
	}

	history := buildChatHistory(a, session)
	raw, err := s.askLLM(ctx, history, generationTemperature)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "assessment evaluation failed", err)
	}

	var turn turnResponse
	if err := decodeJSON(raw, &turn); err != nil {
		raw, err = s.askLLM(ctx, history, generationTemperature)
		if err != nil || decodeJSON(raw, &turn) != nil {
			return nil, apperr.New(apperr.KindInternal, "assessment model returned an unparsable response")
		}
	}
	turn.Score = clamp(turn.Score, 0, 10)

	session.QuestionScores = append(session.QuestionScores, turn.Score)
	session.Messages = append(session.Messages, domain.SessionMessage{
		Role: domain.MessageRoleAI, Content: turn.Evaluation, Timestamp: time.Now(),
	})

	isLast := session.CurrentQuestionIndex >= session.TotalQuestions

	if !isLast && turn.NextQuestion != "" {
		session.CurrentQuestionIndex++
		idx := session.CurrentQuestionIndex
		session.Messages = append(session.Messages, domain.SessionMessage{
			Role: domain.MessageRoleAI, Content: turn.NextQuestion, QuestionIndex: &idx, Timestamp: time.Now(),
		})
	}

	session.TimeSpentSeconds = int(time.Since(session.StartedAt).Seconds())

	if isLast {
		if err := s.finalizeSession(ctx, session, a); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// finalizeSession is the final-report stage of spec §4.6: one more
// LLM call over the full history plus per-question scores, clamped to
// [0,100] and stored, with the invitation transitioning to completed.
func (s *Service) finalizeSession(ctx context.Context, session *domain.AssessmentSession, a *domain.Assessment) error {
	history := buildChatHistory(a, session)
	history = append(history, ports.ChatMessage{
		Role:    ports.ChatRoleUser,
		Content: fmt.Sprintf("Per-question scores: %v. Produce the final report now.", session.QuestionScores),
	})

	raw, err := s.askLLM(ctx, history, finalReportTemperature)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "final report generation failed", err)
	}

	var report finalReportResponse
	if err := decodeJSON(raw, &report); err != nil {
		raw, err = s.askLLM(ctx, history, finalReportTemperature)
		if err != nil || decodeJSON(raw, &report) != nil {
			return apperr.New(apperr.KindInternal, "final report model returned an unparsable response")
		}
	}

	session.Score = clamp(report.Score, 0, 100)
	session.Breakdown = report.Breakdown
	session.Summary = report.Summary
	session.Strengths = report.Strengths
	session.Weaknesses = report.Weaknesses
	session.Status = domain.SessionCompleted
	now := time.Now()
	session.CompletedAt = &now

	inv, err := s.invitations.GetByID(ctx, session.InvitationID)
	if err == nil {
		inv.Status = domain.InvitationCompleted
		if err := s.invitations.Update(ctx, inv); err != nil {
			s.log.WithError(err).Warn("failed to mark invitation completed")
		}
		s.emit(ctx, inv.EmployerID, domain.NotificationAssessmentComplete, "Assessment completed", "A candidate finished their assessment.", a.ID)
	}
	s.emit(ctx, session.FreelancerID, domain.NotificationAssessmentComplete, "Assessment completed", "Your assessment has been scored.", a.ID)

	return nil
}

func (s *Service) askLLM(ctx context.Context, messages []ports.ChatMessage, temperature float64) (string, error) {
	return s.llm.Chat(ctx, messages, ports.ChatOptions{Temperature: temperature, JSONMode: true, MaxTokens: 1000})
}

// buildChatHistory maps session messages (ai<->assistant, user<->user)
// prefixed with the system prompt, per spec §4.6's turn-loop rule.
func buildChatHistory(a *domain.Assessment, session *domain.AssessmentSession) []ports.ChatMessage {
	history := []ports.ChatMessage{{Role: ports.ChatRoleSystem, Content: assessorSystemPrompt(a)}}
	for _, m := range session.Messages {
		role := ports.ChatRoleUser
		if m.Role == domain.MessageRoleAI {
			role = ports.ChatRoleAssistant
		}
		history = append(history, ports.ChatMessage{Role: role, Content: m.Content})
	}
	return history
}

// assessorSystemPrompt fixes profession, role, skills, difficulty,
// total questions, the one-question-at-a-time rule, JSON-only output,
// and the adaptive-difficulty rule, per spec §4.6a.
func assessorSystemPrompt(a *domain.Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a technical assessor interviewing a candidate for a %s role (%s profession).\n", a.RoleTitle, a.Profession)
	fmt.Fprintf(&b, "Required skills: %s. Difficulty: %s. Total questions: %d.\n", strings.Join(a.Skills, ", "), a.Difficulty, a.QuestionCount)
	b.WriteString("Ask exactly one question at a time. Never ask multiple questions in a single turn. ")
	b.WriteString("Adapt the difficulty of the next question based on how well the candidate answered the previous one. ")
	b.WriteString("Respond only with a single JSON object, no surrounding text, matching the schema you have been given for the current stage.")
	return b.String()
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
