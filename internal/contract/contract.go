// Package contract implements the Contract & Milestone Core of spec
// §4.4: validated state-graph transitions over domain.Contract and
// domain.Milestone, auto-linking, auto-payment dispatch, and
// auto-complete. Grounded on the teacher's flat, unvalidated
// Contact.Status string field, generalized into an explicit graph walk
// because the spec requires illegal transitions to hard-fail rather
// than silently overwrite.
package contract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

// Charger is the narrow boundary onto the Payment Orchestrator this
// package depends on for the approval -> auto-payment hook, avoiding
// a direct import of internal/payment's full surface.
type Charger interface {
	ChargeMilestone(ctx context.Context, employer *domain.User, contract *domain.Contract, order int, paymentMethodID string) error
}

type Service struct {
	contracts store.ContractStore
	users     store.UserStore
	charger   Charger
	notify    *notify.Service
	mailer    ports.Mailer
	log       *logrus.Entry
}

func New(contracts store.ContractStore, users store.UserStore, charger Charger, notifier *notify.Service, mailer ports.Mailer, log *logrus.Entry) *Service {
	return &Service{contracts: contracts, users: users, charger: charger, notify: notifier, mailer: mailer, log: log}
}

// emailInvitation covers a contract sent to a contributor who has no
// account yet: there is no recipient to attach a persisted notification
// to, so the invite goes out over email instead.
func (s *Service) emailInvitation(ctx context.Context, c *domain.Contract) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("You have been invited to a contract: %s. Sign up to review and accept it.", c.Name)
	if err := s.mailer.Send(ctx, ports.Email{To: c.ContributorEmail, Subject: "You're invited to a contract on Artemis", Text: body}); err != nil {
		s.log.WithError(err).Warn("failed to email contract invitation")
	}
}
