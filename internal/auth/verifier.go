// Package auth implements the authentication adapter of spec §4.7: it
// verifies an opaque bearer token against the identity provider port
// (modeled as a Clerk-style RS256 JWT issuer) and loads the local user
// record behind it. No password or session state lives here — that is
// explicitly the identity provider's job, not the core's.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

// Claims is the subset of a Clerk-style session token this core reads.
// The external id is the JWT subject; role/verified are not trusted
// from the token and are always re-loaded from the local User record.
type Claims struct {
	jwt.RegisteredClaims
}

type Verifier struct {
	publicKey interface{}
	issuer    string
	users     store.UserStore
	log       *logrus.Entry
}

func NewVerifier(publicKeyPEM, issuer string, users store.UserStore, log *logrus.Entry) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}
	return &Verifier{publicKey: key, issuer: issuer, users: users, log: log}, nil
}

// Identity is what the rest of the core needs attached to a request:
// the local user plus the two facts every guard checks.
type Identity struct {
	User     *domain.User
	Role     domain.Role
	Verified bool
}

// VerifyToken is the opaque VerifyToken(jwt) -> userId call of spec
// §1, expanded to also load and return the local user record, since
// every caller needs it immediately after verification anyway.
func (v *Verifier) VerifyToken(ctx context.Context, rawToken string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.publicKey, nil
	}, jwt.WithIssuer(v.issuer))
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.KindForbidden, "invalid or expired token")
	}

	externalID := claims.Subject
	if externalID == "" {
		return nil, apperr.New(apperr.KindForbidden, "token missing subject")
	}

	user, err := v.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not provisioned")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperr.New(apperr.KindForbidden, "account deactivated")
	}

	return &Identity{User: user, Role: user.Role, Verified: user.Verified}, nil
}
