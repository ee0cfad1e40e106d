package identity

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
)

// Principal is a verified caller.
type Principal struct {
	UID     string
	Email   string
	IsAdmin bool
}

// Verifier turns a bearer token into a Principal or fails with an unauthorized error.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// TokenVerifier is the subset of *auth.Client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseVerifier struct {
	client TokenVerifier
	admins map[string]struct{}
}

// NewFirebaseVerifier grants the reviewer capability to tokens carrying the
// custom claim admin=true and to any email in adminEmails.
func NewFirebaseVerifier(client TokenVerifier, adminEmails []string) *FirebaseVerifier {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &FirebaseVerifier{client: client, admins: admins}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Missing bearer token")
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid or expired token", err)
	}
	if tok.UID == "" {
		return nil, apperr.Unauthorized("Token has no subject")
	}

	email, _ := tok.Claims["email"].(string)
	isAdmin, _ := tok.Claims["admin"].(bool)
	if !isAdmin && email != "" {
		_, isAdmin = v.admins[strings.ToLower(email)]
	}
	return &Principal{UID: tok.UID, Email: email, IsAdmin: isAdmin}, nil
}

// ExtractBearer reads "Authorization: Bearer <token>". The scheme is case-insensitive.
func ExtractBearer(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// DisabledVerifier rejects every token. Used when no identity provider is configured.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(context.Context, string) (*Principal, error) {
	return nil, apperr.Unauthorized("Authentication is not configured")
}
