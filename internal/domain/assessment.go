package domain

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type Assessment struct {
	ID               string     `json:"id"`
	EmployerID       string     `json:"employer_id"`
	Title            string     `json:"title"`
	Profession       string     `json:"profession"`
	RoleTitle        string     `json:"role"`
	Skills           []string   `json:"skills"`
	Difficulty       Difficulty `json:"difficulty"`
	QuestionCount    int        `json:"question_count"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
}

const (
	MinQuestionCount    = 3
	MaxQuestionCount    = 20
	MinTimeLimitMinutes = 5
	MaxTimeLimitMinutes = 120
)

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCompleted InvitationStatus = "completed"
	InvitationExpired   InvitationStatus = "expired"
	InvitationDeclined  InvitationStatus = "declined"
)

type AssessmentInvitation struct {
	ID             string           `json:"id"`
	AssessmentID   string           `json:"assessment_id"`
	EmployerID     string           `json:"employer_id"`
	FreelancerID   string           `json:"freelancer_id,omitempty"`
	FreelancerEmail string          `json:"freelancer_email,omitempty"`
	Token          string           `json:"token"`
	Status         InvitationStatus `json:"status"`
	ExpiresAt      time.Time        `json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (i *AssessmentInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionTimedOut   SessionStatus = "timed_out"
	SessionAbandoned  SessionStatus = "abandoned"
)

func (s SessionStatus) Terminal() bool {
	return s != SessionInProgress
}

type MessageRole string

const (
	MessageRoleAI   MessageRole = "ai"
	MessageRoleUser MessageRole = "user"
)

type SessionMessage struct {
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	QuestionIndex  *int        `json:"question_index,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

type AssessmentSession struct {
	ID                    string            `json:"id"`
	InvitationID          string            `json:"invitation_id"`
	AssessmentID          string            `json:"assessment_id"`
	FreelancerID          string            `json:"freelancer_id"`
	Messages              []SessionMessage  `json:"messages"`
	CurrentQuestionIndex  int               `json:"current_question_index"`
	TotalQuestions        int               `json:"total_questions"`
	QuestionScores        []float64         `json:"question_scores,omitempty"`
	StartedAt             time.Time         `json:"started_at"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	TimeSpentSeconds      int               `json:"time_spent_seconds"`
	TimeLimitMinutes      int               `json:"time_limit_minutes"`
	Status                SessionStatus     `json:"status"`
	Score                 float64           `json:"score,omitempty"`
	Breakdown             map[string]float64 `json:"breakdown,omitempty"`
	Summary               string            `json:"summary,omitempty"`
	Strengths             []string          `json:"strengths,omitempty"`
	Weaknesses            []string          `json:"weaknesses,omitempty"`
}

func (s *AssessmentSession) TimedOut(now time.Time) bool {
	limit := time.Duration(s.TimeLimitMinutes) * time.Minute
	return now.Sub(s.StartedAt) > limit
}
