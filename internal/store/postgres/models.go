package postgres

import (
	"time"

	"github.com/oncodeoperations/artemis-core/internal/domain"
)

// Row types carry the gorm tags the domain package deliberately omits
// (spec §9 "Dynamic shapes → tagged variants" / persistence stays
// storage-agnostic in internal/domain). Conversion to/from domain
// types is explicit at the edge of each store method.

type userRow struct {
	ID                    string `gorm:"primaryKey"`
	ExternalID            string `gorm:"uniqueIndex"`
	Email                 string `gorm:"uniqueIndex"`
	Role                  string
	DisplayName           string
	Country               string
	CodeHostUsername      string
	Profession            string
	SkillTags             JSONColumn[[]string] `gorm:"type:jsonb"`
	SavedCodeHostUsers    JSONColumn[[]string] `gorm:"type:jsonb"`
	CompanyName           string
	PaymentCustomerHandle string
	Balance               float64
	TotalEarnings         float64
	BankInfo              JSONColumn[*domain.BankInfo] `gorm:"type:jsonb"`
	Verified              bool
	Active                bool `gorm:"default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeactivatedAt         *time.Time
}

func (userRow) TableName() string { return "users" }

func fromUserRow(r *userRow) *domain.User {
	return &domain.User{
		ID: r.ID, ExternalID: r.ExternalID, Email: r.Email, Role: domain.Role(r.Role),
		DisplayName: r.DisplayName, Country: r.Country, CodeHostUsername: r.CodeHostUsername,
		Profession: r.Profession, SkillTags: r.SkillTags.Value, SavedCodeHostUsers: r.SavedCodeHostUsers.Value,
		CompanyName: r.CompanyName, PaymentCustomerHandle: r.PaymentCustomerHandle,
		Balance: r.Balance, TotalEarnings: r.TotalEarnings, BankInfo: r.BankInfo.Value,
		Verified: r.Verified, Active: r.Active, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		DeactivatedAt: r.DeactivatedAt,
	}
}

func toUserRow(u *domain.User) *userRow {
	return &userRow{
		ID: u.ID, ExternalID: u.ExternalID, Email: u.Email, Role: string(u.Role),
		DisplayName: u.DisplayName, Country: u.Country, CodeHostUsername: u.CodeHostUsername,
		Profession: u.Profession, SkillTags: JSONColumn[[]string]{Value: u.SkillTags},
		SavedCodeHostUsers: JSONColumn[[]string]{Value: u.SavedCodeHostUsers},
		CompanyName: u.CompanyName, PaymentCustomerHandle: u.PaymentCustomerHandle,
		Balance: u.Balance, TotalEarnings: u.TotalEarnings,
		BankInfo: JSONColumn[*domain.BankInfo]{Value: u.BankInfo},
		Verified: u.Verified, Active: u.Active, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		DeactivatedAt: u.DeactivatedAt,
	}
}

type contractRow struct {
	ID                 string `gorm:"primaryKey"`
	CreatorID          string `gorm:"index"`
	ContributorID      string `gorm:"index"`
	ContributorEmail   string
	Name               string
	Description        string
	Category           string
	Type               string
	Budget             float64
	HourlyRate         float64
	HoursPerWeek       float64
	Currency           string
	PlatformFeePercent float64
	Status             string `gorm:"index"`
	Milestones         JSONColumn[[]domain.Milestone] `gorm:"type:jsonb"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (contractRow) TableName() string { return "contracts" }

func fromContractRow(r *contractRow) *domain.Contract {
	return &domain.Contract{
		ID: r.ID, CreatorID: r.CreatorID, ContributorID: r.ContributorID, ContributorEmail: r.ContributorEmail,
		Name: r.Name, Description: r.Description, Category: r.Category, Type: domain.ContractType(r.Type),
		Budget: r.Budget, HourlyRate: r.HourlyRate, HoursPerWeek: r.HoursPerWeek, Currency: r.Currency,
		PlatformFeePercent: r.PlatformFeePercent, Status: domain.ContractStatus(r.Status),
		Milestones: r.Milestones.Value, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toContractRow(c *domain.Contract) *contractRow {
	return &contractRow{
		ID: c.ID, CreatorID: c.CreatorID, ContributorID: c.ContributorID, ContributorEmail: c.ContributorEmail,
		Name: c.Name, Description: c.Description, Category: c.Category, Type: string(c.Type),
		Budget: c.Budget, HourlyRate: c.HourlyRate, HoursPerWeek: c.HoursPerWeek, Currency: c.Currency,
		PlatformFeePercent: c.PlatformFeePercent, Status: string(c.Status),
		Milestones: JSONColumn[[]domain.Milestone]{Value: c.Milestones}, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

type notificationRow struct {
	ID          string `gorm:"primaryKey"`
	RecipientID string `gorm:"index"`
	Type        string
	Title       string
	Body        string
	ContractID  string
	AssessmentID string
	ActorID     string
	Metadata    JSONColumn[map[string]interface{}] `gorm:"type:jsonb"`
	Read        bool `gorm:"index"`
	ReadAt      *time.Time
	CreatedAt   time.Time `gorm:"index"`
	Seq         int64     `gorm:"autoIncrement"`
}

func (notificationRow) TableName() string { return "notifications" }

func fromNotificationRow(r *notificationRow) *domain.Notification {
	return &domain.Notification{
		ID: r.ID, RecipientID: r.RecipientID, Type: domain.NotificationType(r.Type),
		Title: r.Title, Body: r.Body, ContractID: r.ContractID, AssessmentID: r.AssessmentID,
		ActorID: r.ActorID, Metadata: r.Metadata.Value, Read: r.Read, ReadAt: r.ReadAt,
		CreatedAt: r.CreatedAt, Seq: r.Seq,
	}
}

func toNotificationRow(n *domain.Notification) *notificationRow {
	return &notificationRow{
		ID: n.ID, RecipientID: n.RecipientID, Type: string(n.Type), Title: n.Title, Body: n.Body,
		ContractID: n.ContractID, AssessmentID: n.AssessmentID, ActorID: n.ActorID,
		Metadata: JSONColumn[map[string]interface{}]{Value: n.Metadata}, Read: n.Read, ReadAt: n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type withdrawalRow struct {
	ID               string `gorm:"primaryKey"`
	OwnerID          string `gorm:"index"`
	Amount           float64
	Currency         string
	Status           string `gorm:"index"`
	BankInfoSnapshot JSONColumn[domain.BankInfo] `gorm:"type:jsonb"`
	AdminNote        string
	ProcessorRef     string
	RequestedAt      time.Time
	ProcessedAt      *time.Time
}

func (withdrawalRow) TableName() string { return "withdrawals" }

func fromWithdrawalRow(r *withdrawalRow) *domain.Withdrawal {
	return &domain.Withdrawal{
		ID: r.ID, OwnerID: r.OwnerID, Amount: r.Amount, Currency: r.Currency, Status: domain.WithdrawalStatus(r.Status),
		BankInfoSnapshot: r.BankInfoSnapshot.Value, AdminNote: r.AdminNote, ProcessorRef: r.ProcessorRef,
		RequestedAt: r.RequestedAt, ProcessedAt: r.ProcessedAt,
	}
}

func toWithdrawalRow(w *domain.Withdrawal) *withdrawalRow {
	return &withdrawalRow{
		ID: w.ID, OwnerID: w.OwnerID, Amount: w.Amount, Currency: w.Currency, Status: string(w.Status),
		BankInfoSnapshot: JSONColumn[domain.BankInfo]{Value: w.BankInfoSnapshot}, AdminNote: w.AdminNote,
		ProcessorRef: w.ProcessorRef, RequestedAt: w.RequestedAt, ProcessedAt: w.ProcessedAt,
	}
}

type leaderboardRow struct {
	Username         string `gorm:"primaryKey"`
	DisplayName      string
	Avatar           string
	Country          string
	PrimaryLanguages JSONColumn[[]string] `gorm:"type:jsonb"`
	OverallScore     float64 `gorm:"index"`
	OverallLevel     string  `gorm:"index"`
	OptedIn          bool
	ConsentAt        *time.Time
	SubmittedAt      time.Time
}

func (leaderboardRow) TableName() string { return "leaderboard_entries" }

func fromLeaderboardRow(r *leaderboardRow) *domain.LeaderboardEntry {
	return &domain.LeaderboardEntry{
		Username: r.Username, DisplayName: r.DisplayName, Avatar: r.Avatar, Country: r.Country,
		PrimaryLanguages: r.PrimaryLanguages.Value, OverallScore: r.OverallScore, OverallLevel: r.OverallLevel,
		OptedIn: r.OptedIn, ConsentAt: r.ConsentAt, SubmittedAt: r.SubmittedAt,
	}
}

func toLeaderboardRow(e *domain.LeaderboardEntry) *leaderboardRow {
	return &leaderboardRow{
		Username: e.Username, DisplayName: e.DisplayName, Avatar: e.Avatar, Country: e.Country,
		PrimaryLanguages: JSONColumn[[]string]{Value: e.PrimaryLanguages}, OverallScore: e.OverallScore,
		OverallLevel: e.OverallLevel, OptedIn: e.OptedIn, ConsentAt: e.ConsentAt, SubmittedAt: e.SubmittedAt,
	}
}

type assessmentRow struct {
	ID               string `gorm:"primaryKey"`
	EmployerID       string `gorm:"index"`
	Title            string
	Profession       string
	RoleTitle        string
	Skills           JSONColumn[[]string] `gorm:"type:jsonb"`
	Difficulty       string
	QuestionCount    int
	TimeLimitMinutes int
	IsActive         bool `gorm:"default:true"`
	CreatedAt        time.Time
}

func (assessmentRow) TableName() string { return "assessments" }

func fromAssessmentRow(r *assessmentRow) *domain.Assessment {
	return &domain.Assessment{
		ID: r.ID, EmployerID: r.EmployerID, Title: r.Title, Profession: r.Profession, RoleTitle: r.RoleTitle,
		Skills: r.Skills.Value, Difficulty: domain.Difficulty(r.Difficulty), QuestionCount: r.QuestionCount,
		TimeLimitMinutes: r.TimeLimitMinutes, IsActive: r.IsActive, CreatedAt: r.CreatedAt,
	}
}

func toAssessmentRow(a *domain.Assessment) *assessmentRow {
	return &assessmentRow{
		ID: a.ID, EmployerID: a.EmployerID, Title: a.Title, Profession: a.Profession, RoleTitle: a.RoleTitle,
		Skills: JSONColumn[[]string]{Value: a.Skills}, Difficulty: string(a.Difficulty),
		QuestionCount: a.QuestionCount, TimeLimitMinutes: a.TimeLimitMinutes, IsActive: a.IsActive, CreatedAt: a.CreatedAt,
	}
}

type invitationRow struct {
	ID              string `gorm:"primaryKey"`
	AssessmentID    string `gorm:"index"`
	EmployerID      string
	FreelancerID    string
	FreelancerEmail string
	Token           string `gorm:"uniqueIndex"`
	Status          string `gorm:"index"`
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

func (invitationRow) TableName() string { return "assessment_invitations" }

func fromInvitationRow(r *invitationRow) *domain.AssessmentInvitation {
	return &domain.AssessmentInvitation{
		ID: r.ID, AssessmentID: r.AssessmentID, EmployerID: r.EmployerID, FreelancerID: r.FreelancerID,
		FreelancerEmail: r.FreelancerEmail, Token: r.Token, Status: domain.InvitationStatus(r.Status),
		ExpiresAt: r.ExpiresAt, CreatedAt: r.CreatedAt,
	}
}

func toInvitationRow(i *domain.AssessmentInvitation) *invitationRow {
	return &invitationRow{
		ID: i.ID, AssessmentID: i.AssessmentID, EmployerID: i.EmployerID, FreelancerID: i.FreelancerID,
		FreelancerEmail: i.FreelancerEmail, Token: i.Token, Status: string(i.Status),
		ExpiresAt: i.ExpiresAt, CreatedAt: i.CreatedAt,
	}
}

type sessionRow struct {
	ID                   string `gorm:"primaryKey"`
	InvitationID         string `gorm:"index"`
	AssessmentID         string
	FreelancerID         string `gorm:"index"`
	Messages             JSONColumn[[]domain.SessionMessage] `gorm:"type:jsonb"`
	CurrentQuestionIndex int
	TotalQuestions       int
	QuestionScores       JSONColumn[[]float64] `gorm:"type:jsonb"`
	StartedAt            time.Time
	CompletedAt          *time.Time
	TimeSpentSeconds     int
	TimeLimitMinutes     int
	Status               string `gorm:"index"`
	Score                float64
	Breakdown            JSONColumn[map[string]float64] `gorm:"type:jsonb"`
	Summary              string
	Strengths            JSONColumn[[]string] `gorm:"type:jsonb"`
	Weaknesses           JSONColumn[[]string] `gorm:"type:jsonb"`
}

func (sessionRow) TableName() string { return "assessment_sessions" }

func fromSessionRow(r *sessionRow) *domain.AssessmentSession {
	return &domain.AssessmentSession{
		ID: r.ID, InvitationID: r.InvitationID, AssessmentID: r.AssessmentID, FreelancerID: r.FreelancerID,
		Messages: r.Messages.Value, CurrentQuestionIndex: r.CurrentQuestionIndex, TotalQuestions: r.TotalQuestions,
		QuestionScores: r.QuestionScores.Value, StartedAt: r.StartedAt, CompletedAt: r.CompletedAt,
		TimeSpentSeconds: r.TimeSpentSeconds, TimeLimitMinutes: r.TimeLimitMinutes, Status: domain.SessionStatus(r.Status),
		Score: r.Score, Breakdown: r.Breakdown.Value, Summary: r.Summary, Strengths: r.Strengths.Value, Weaknesses: r.Weaknesses.Value,
	}
}

func toSessionRow(s *domain.AssessmentSession) *sessionRow {
	return &sessionRow{
		ID: s.ID, InvitationID: s.InvitationID, AssessmentID: s.AssessmentID, FreelancerID: s.FreelancerID,
		Messages: JSONColumn[[]domain.SessionMessage]{Value: s.Messages}, CurrentQuestionIndex: s.CurrentQuestionIndex,
		TotalQuestions: s.TotalQuestions, QuestionScores: JSONColumn[[]float64]{Value: s.QuestionScores},
		StartedAt: s.StartedAt, CompletedAt: s.CompletedAt, TimeSpentSeconds: s.TimeSpentSeconds,
		TimeLimitMinutes: s.TimeLimitMinutes, Status: string(s.Status), Score: s.Score,
		Breakdown: JSONColumn[map[string]float64]{Value: s.Breakdown}, Summary: s.Summary,
		Strengths: JSONColumn[[]string]{Value: s.Strengths}, Weaknesses: JSONColumn[[]string]{Value: s.Weaknesses},
	}
}

// AllRowModels is the AutoMigrate target list, replacing the teacher's
// runMigrations() call over its five portfolio models.
func AllRowModels() []interface{} {
	return []interface{}{
		&userRow{}, &contractRow{}, &notificationRow{}, &withdrawalRow{},
		&leaderboardRow{}, &assessmentRow{}, &invitationRow{}, &sessionRow{},
	}
}
