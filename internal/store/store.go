// Package store defines the persistence ports every component depends
// on: abstract CRUD plus the transactional primitives (FindAndModify,
// Increment) the spec's concurrency model requires. The concrete
// implementation lives in internal/store/postgres.
package store

import (
	"context"

	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type Page struct {
	Items []interface{}
	Total int64
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Deactivate(ctx context.Context, id string) error

	// IncrementBalance atomically adds delta to balance and earningsDelta
	// to total_earnings in a single document-level update.
	IncrementBalance(ctx context.Context, userID string, delta, earningsDelta float64) error

	// DecrementIfSufficient performs the compare-and-set debit of spec
	// §5: `UPDATE ... WHERE balance >= amount SET balance -= amount`.
	// Returns false (no error) if the precondition failed.
	DecrementIfSufficient(ctx context.Context, userID string, amount float64) (bool, error)
}

type ContractStore interface {
	Create(ctx context.Context, c *domain.Contract) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	Update(ctx context.Context, c *domain.Contract) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string, page, limit int) ([]domain.Contract, int64, error)

	// CompareAndSetStatus updates status only if the row's current
	// status equals expectedCurrent. Returns false if it did not match.
	CompareAndSetStatus(ctx context.Context, contractID string, expectedCurrent, next domain.ContractStatus) (bool, error)

	// LinkContributorIfUnset is the one-time auto-link write of spec §4.4.
	LinkContributorIfUnset(ctx context.Context, contractID, userID string) (bool, error)

	// CompareAndSetMilestoneStatus performs the milestone-level
	// compare-and-set transition required by spec §5, returning the
	// updated contract on success.
	CompareAndSetMilestoneStatus(ctx context.Context, contractID string, order int, expectedCurrent, next domain.MilestoneStatus, mutate func(m *domain.Milestone)) (*domain.Contract, bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, recipientID string, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
}

type WithdrawalStore interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	HasOpenForUser(ctx context.Context, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string, page, limit int) ([]domain.Withdrawal, int64, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]domain.Withdrawal, int64, error)
	CompareAndSetStatus(ctx context.Context, id string, expectedCurrent, next domain.WithdrawalStatus) (bool, error)
	Update(ctx context.Context, w *domain.Withdrawal) error
}

type LeaderboardStore interface {
	Upsert(ctx context.Context, e *domain.LeaderboardEntry) error
	Get(ctx context.Context, username string) (*domain.LeaderboardEntry, error)
	List(ctx context.Context, country, level, language string, limit int) ([]domain.LeaderboardEntry, int64, error)
}

type AssessmentStore interface {
	Create(ctx context.Context, a *domain.Assessment) error
	GetByID(ctx context.Context, id string) (*domain.Assessment, error)
	ListForEmployer(ctx context.Context, employerID string) ([]domain.Assessment, error)
	Deactivate(ctx context.Context, id string) error
}

type InvitationStore interface {
	Create(ctx context.Context, i *domain.AssessmentInvitation) error
	GetByToken(ctx context.Context, token string) (*domain.AssessmentInvitation, error)
	GetByID(ctx context.Context, id string) (*domain.AssessmentInvitation, error)
	Update(ctx context.Context, i *domain.AssessmentInvitation) error
	HasInProgressSession(ctx context.Context, invitationID string) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *domain.AssessmentSession) error
	GetByID(ctx context.Context, id string) (*domain.AssessmentSession, error)
	Update(ctx context.Context, s *domain.AssessmentSession) error
}
