// Package services contains the backend's business logic. IdentityService
// mirrors the hosted identity provider the account workflows were written
// against: accounts, sessions, mailed codes and recent-login checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/cryptox"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/server/auth"
	"github.com/dmitrijs2005/siteaccounts/internal/server/config"
	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/google/uuid"

	mailer "github.com/dmitrijs2005/siteaccounts/internal/server/mail"
)

// MinPasswordLength is the provider's own floor. The client asks for more.
const MinPasswordLength = 6

// codeSize is the number of random bytes in a mailed code.
const codeSize = 16

// Session is what sign-in style calls hand back to the transport.
type Session struct {
	User  *models.User
	Token string
}

type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	clock       timex.Scheduler
	logger      logging.Logger

	HashParams          cryptox.Params
	jwtSecret           []byte
	tokenValidity       time.Duration
	recentLoginWindow   time.Duration
	verificationCodeTTL time.Duration
	publicURL           string
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config, l logging.Logger) *IdentityService {
	if l == nil {
		l = logging.Nop{}
	}
	return &IdentityService{
		db:                  db,
		repomanager:         m,
		mailer:              ml,
		clock:               timex.Real(),
		logger:              l.With("module", "identity_service"),
		HashParams:          cryptox.DefaultParams,
		jwtSecret:           []byte(cfg.SecretKey),
		tokenValidity:       cfg.AccessTokenValidityDuration,
		recentLoginWindow:   cfg.RecentLoginWindow,
		verificationCodeTTL: cfg.VerificationCodeTTL,
		publicURL:           strings.TrimRight(cfg.PublicURL, "/"),
	}
}

// WithClock replaces the clock used for expiry and recent-login checks.
func (s *IdentityService) WithClock(c timex.Scheduler) *IdentityService {
	s.clock = c
	return s
}

func checkEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return identity.NewError(identity.CodeInvalidEmail, "The email address is badly formatted.")
	}
	return nil
}

func checkPassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return identity.NewError(identity.CodeWeakPassword, fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength))
	}
	return nil
}

var (
	errEmailInUse     = identity.NewError(identity.CodeEmailInUse, "The email address is already in use by another account.")
	errUserNotFound   = identity.NewError(identity.CodeUserNotFound, "There is no user record corresponding to this identifier.")
	errWrongPassword  = identity.NewError(identity.CodeWrongPassword, "The password is invalid.")
	errRecentLogin    = identity.NewError(identity.CodeRequiresRecentLogin, "This operation is sensitive and requires recent authentication.")
	errInvalidCode    = identity.NewError(identity.CodeInvalidCode, "The code is invalid or has expired.")
	errSessionRevoked = identity.NewError(identity.CodeUnauthenticated, "The session has ended. Sign in again.")
)

// startSession stores a new session row and signs its token.
func (s *IdentityService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	id := uuid.NewString()
	if err := s.repomanager.Sessions(s.db).Create(ctx, id, user.ID, s.tokenValidity); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	token, err := auth.GenerateToken(id, user.ID, s.clock.Now(), s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func (s *IdentityService) CreateAccount(ctx context.Context, email, password string) (*Session, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, errEmailInUse
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPassword(password, s.HashParams)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, errEmailInUse
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "account created", "uid", user.ID)
	return s.startSession(ctx, user)
}

// checkCredentials returns the user owning email when password matches.
func (s *IdentityService) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, errWrongPassword
	}
	return user, nil
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

// Authenticate verifies a token and that its session was not signed out.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, identity.NewError(identity.CodeUnauthenticated, err.Error())
	}
	if _, err := s.repomanager.Sessions(s.db).Find(ctx, claims.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errSessionRevoked
		}
		return nil, fmt.Errorf("error looking up session: %w", err)
	}
	return claims, nil
}

func (s *IdentityService) user(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}

func (s *IdentityService) SignOut(ctx context.Context, c *auth.Claims) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// Reauthenticate checks the credential against the signed-in user and issues
// a token for the same session with a fresh auth time.
func (s *IdentityService) Reauthenticate(ctx context.Context, c *auth.Claims, email, password string) (*Session, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.ID != c.UserID {
		return nil, identity.NewError(identity.CodeWrongPassword, "The supplied credentials do not correspond to the signed-in user.")
	}
	token, err := auth.GenerateToken(c.ID, user.ID, s.clock.Now(), s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func (s *IdentityService) requireRecentLogin(c *auth.Claims) error {
	if s.clock.Now().Sub(c.AuthenticatedAt()) > s.recentLoginWindow {
		return errRecentLogin
	}
	return nil
}

// issueCode replaces the user's pending codes of the given purpose with a
// new one and mails its link to "to".
func (s *IdentityService) issueCode(ctx context.Context, user *models.User, purpose models.CodePurpose, to, newEmail string) error {
	code, err := common.MakeRandHexString(codeSize)
	if err != nil {
		return fmt.Errorf("error generating code: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Codes(tx)
		if err := repo.DeleteForUser(ctx, user.ID, purpose); err != nil {
			return err
		}
		return repo.Create(ctx, &models.VerificationCode{
			CodeHash:  cryptox.Digest(code),
			UserID:    user.ID,
			Purpose:   purpose,
			NewEmail:  newEmail,
			ExpiresAt: s.clock.Now().Add(s.verificationCodeTTL),
		})
	})
	if err != nil {
		return fmt.Errorf("error storing code: %w", err)
	}

	link := s.publicURL + "/verify?code=" + url.QueryEscape(code)
	msg := mailer.Message{To: to}
	switch purpose {
	case models.PurposeChangeEmail:
		msg.Subject = "Confirm your new email address"
		msg.Body = "Follow this link to use " + newEmail + " for your account: " + link
	default:
		msg.Subject = "Verify your email address"
		msg.Body = "Follow this link to verify your email address: " + link
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending mail: %w", err)
	}
	return nil
}

func (s *IdentityService) SendVerificationEmail(ctx context.Context, c *auth.Claims) error {
	user, err := s.user(ctx, c.UserID)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user, models.PurposeVerifyEmail, user.Email, "")
}

// VerifyBeforeUpdateEmail mails a confirmation link to newEmail. The address
// changes only when that link is followed.
func (s *IdentityService) VerifyBeforeUpdateEmail(ctx context.Context, c *auth.Claims, newEmail string) error {
	if err := s.requireRecentLogin(c); err != nil {
		return err
	}
	if err := checkEmail(newEmail); err != nil {
		return err
	}

	user, err := s.user(ctx, c.UserID)
	if err != nil {
		return err
	}

	other, err := s.repomanager.Users(s.db).GetByEmail(ctx, newEmail)
	switch {
	case err == nil && other.ID != user.ID:
		return errEmailInUse
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("error looking up user: %w", err)
	}

	return s.issueCode(ctx, user, models.PurposeChangeEmail, newEmail, newEmail)
}

func (s *IdentityService) UpdatePassword(ctx context.Context, c *auth.Claims, newPassword string) error {
	if err := s.requireRecentLogin(c); err != nil {
		return err
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword, s.HashParams)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, c.UserID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// Reload returns the current user record behind c.
func (s *IdentityService) Reload(ctx context.Context, c *auth.Claims) (*models.User, error) {
	return s.user(ctx, c.UserID)
}

// ConfirmCode applies a mailed code: it marks the address verified or
// switches the account to the pending address. Codes work once.
func (s *IdentityService) ConfirmCode(ctx context.Context, code string) error {
	hash := cryptox.Digest(strings.TrimSpace(code))

	vc, err := s.repomanager.Codes(s.db).Find(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errInvalidCode
		}
		return fmt.Errorf("error looking up code: %w", err)
	}

	if vc.Expired(s.clock.Now()) {
		if err := s.repomanager.Codes(s.db).Delete(ctx, hash); err != nil {
			s.logger.Warn(ctx, "error deleting expired code", "error", err)
		}
		return errInvalidCode
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		switch vc.Purpose {
		case models.PurposeChangeEmail:
			if err := users.UpdateEmail(ctx, vc.UserID, vc.NewEmail); err != nil {
				return err
			}
		default:
			if err := users.MarkEmailVerified(ctx, vc.UserID); err != nil {
				return err
			}
		}
		return s.repomanager.Codes(tx).Delete(ctx, hash)
	})
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return errEmailInUse
	case errors.Is(err, common.ErrorNotFound):
		return errUserNotFound
	case err != nil:
		return fmt.Errorf("error applying code: %w", err)
	}

	s.logger.Info(ctx, "code applied", "uid", vc.UserID, "purpose", string(vc.Purpose))
	return nil
}
