// Package identity is the client-side contract with the identity service:
// session snapshots, credentials, coded failures and the auth-state
// subscription. Nothing here talks to a network; see grpcclient for that.
package identity

import "context"

// Session is an immutable snapshot of the signed-in user as last reported by
// the identity service. Fields may be stale after an update call; take a
// fresh snapshot from the subscription instead of mutating one.
type Session struct {
	UID           string
	Email         string
	EmailVerified bool
	Token         string
}

// Credential is an email/password pair used to (re)authenticate.
type Credential struct {
	Email    string
	Password string
}

// EmailCredential rebuilds a credential, typically from a session's email and
// a password the user just typed.
func EmailCredential(email, password string) Credential {
	return Credential{Email: email, Password: password}
}

// Listener receives a session snapshot on every auth-state change, or nil
// when nobody is signed in.
type Listener func(*Session)

// Service is the identity provider as seen by the account workflows.
//
// Failures are returned as *Error carrying a machine-readable Code.
type Service interface {
	CreateAccount(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SendVerificationEmail(ctx context.Context, s Session) error
	SignOut(ctx context.Context, s Session) error
	Reauthenticate(ctx context.Context, s Session, c Credential) (Session, error)
	// VerifyBeforeUpdateEmail mails a confirmation to newEmail; the change
	// takes effect only once that confirmation is applied.
	VerifyBeforeUpdateEmail(ctx context.Context, s Session, newEmail string) error
	UpdatePassword(ctx context.Context, s Session, newPassword string) error
	// Reload fetches a fresh snapshot (e.g. after the email got verified).
	Reload(ctx context.Context, s Session) (Session, error)
	// ConfirmCode applies a code delivered by email.
	ConfirmCode(ctx context.Context, code string) error
	Subscribe(l Listener) (unsubscribe func())
}
