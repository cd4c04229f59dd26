package auth

import (
	"StudentRequests/internal/config"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CredentialStore persists accounts and sessions. Lookups return nil, nil
// when nothing matches.
type CredentialStore interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, userID string, patch UserPatch) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByVerifyKey(ctx context.Context, hash string) (*User, error)
	GetUserByResetKey(ctx context.Context, hash string) (*User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error

	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, key string) (*Session, error)
	DeleteSession(ctx context.Context, key string) error
	ClearCSRFToken(ctx context.Context, key string) error
}

// Notifier delivers a message to a user's mailbox.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// ChallengeField selects which one-time key a challenge is stored under.
type ChallengeField string

const (
	ChallengeVerify ChallengeField = "verify"
	ChallengeReset  ChallengeField = "reset"
)

type AuthService struct {
	store      CredentialStore
	notifier   Notifier
	logger     *zap.Logger
	sessionTTL time.Duration
	domain     string
	publicURL  string
	now        func() time.Time
}

func NewAuthService(store CredentialStore, notifier Notifier, cfg *config.AppConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		notifier:   notifier,
		logger:     logger.Named("auth"),
		sessionTTL: cfg.SessionTTL,
		domain:     cfg.InstitutionDomain,
		publicURL:  cfg.PublicURL,
		now:        time.Now,
	}
}

func (s *AuthService) Domain() string {
	return s.domain
}

// Register validates the form, stores a new unverified student and sends the
// email verification challenge.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := ValidateRegistration(req, s.domain); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		UserID:       req.UserID,
		Name:         req.Name,
		PasswordHash: hash,
		Email:        InstitutionalEmail(req.UserID, s.domain),
		Phone:        req.Phone,
		Major:        req.Major,
		Role:         RoleStudent,
		Verified:     false,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("userid", user.UserID))

	// The account is committed; a failed challenge can be re-issued later.
	if _, err := s.IssueVerificationChallenge(ctx, user); err != nil {
		s.logger.Error("verification challenge failed", zap.String("userid", user.UserID), zap.Error(err))
	}
	return user, nil
}

// Authenticate checks the credentials and opens a new session. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, userID, password string) (*Session, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		CheckPasswordHash(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	csrf, err := newCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}
	session := &Session{
		Key:       newSessionKey(),
		Expiry:    s.now().Add(s.sessionTTL),
		Data:      SessionData{UserID: user.UserID},
		CSRFToken: csrf,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session opened", zap.String("userid", user.UserID), zap.Time("expiry", session.Expiry))
	return session, nil
}

// ValidateSession returns the stored session, expired or not. Callers decide
// on expiry themselves; see Authorize.
func (s *AuthService) ValidateSession(ctx context.Context, key string) (*Session, error) {
	if key == "" {
		return nil, nil
	}
	return s.store.GetSession(ctx, key)
}

// Authorize resolves a session key to a live session and its user.
func (s *AuthService) Authorize(ctx context.Context, key string) (*Session, *User, error) {
	session, err := s.ValidateSession(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if !session.Active(s.now()) {
		return nil, nil, ErrSessionExpired
	}
	user, err := s.store.GetUser(ctx, session.Data.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrSessionExpired
	}
	return session, user, nil
}

// RequireCSRF accepts only a byte-exact match with the session's current
// token. A session without a token rejects everything.
func (s *AuthService) RequireCSRF(session *Session, supplied string) error {
	if !session.CanAct() || supplied == "" {
		return ErrCSRFMismatch
	}
	if !tokensEqual(session.CSRFToken, supplied) {
		return ErrCSRFMismatch
	}
	return nil
}

// ClearCSRF leaves the session alive but unable to perform actions until the
// user logs in again.
func (s *AuthService) ClearCSRF(ctx context.Context, key string) error {
	return s.store.ClearCSRFToken(ctx, key)
}

func (s *AuthService) Logout(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, key)
}

func (s *AuthService) IssueVerificationChallenge(ctx context.Context, user *User) (string, error) {
	return s.issueChallenge(ctx, user, ChallengeVerify)
}

func (s *AuthService) IssueResetChallenge(ctx context.Context, user *User) (string, error) {
	return s.issueChallenge(ctx, user, ChallengeReset)
}

func (s *AuthService) issueChallenge(ctx context.Context, user *User, field ChallengeField) (string, error) {
	rawKey := newChallengeKey()
	hash := challengeHash(rawKey)

	var patch UserPatch
	var subject, body string
	switch field {
	case ChallengeVerify:
		patch.VerifyKey = &hash
		subject = "Email Verification"
		body = fmt.Sprintf("Click the link to verify your email: %s/verify?key=%s", s.publicURL, rawKey)
	case ChallengeReset:
		patch.ResetKey = &hash
		subject = "Password Reset"
		body = fmt.Sprintf("Click the link to reset your password: %s/reset-password?key=%s", s.publicURL, rawKey)
	default:
		return "", fmt.Errorf("unknown challenge field %q", field)
	}

	if err := s.store.UpdateUser(ctx, user.UserID, patch); err != nil {
		return "", err
	}
	if err := s.notifier.Notify(ctx, user.Email, subject, body); err != nil {
		return "", fmt.Errorf("send %s challenge: %w", field, err)
	}
	s.logger.Info("challenge issued", zap.String("userid", user.UserID), zap.String("field", string(field)))
	return rawKey, nil
}

// ResolveChallenge finds the user holding rawKey under field, or nil.
func (s *AuthService) ResolveChallenge(ctx context.Context, rawKey string, field ChallengeField) (*User, error) {
	if rawKey == "" {
		return nil, nil
	}
	hash := challengeHash(rawKey)
	switch field {
	case ChallengeVerify:
		return s.store.GetUserByVerifyKey(ctx, hash)
	case ChallengeReset:
		return s.store.GetUserByResetKey(ctx, hash)
	default:
		return nil, fmt.Errorf("unknown challenge field %q", field)
	}
}

// VerifyEmail consumes a verification key. The verified flag only ever goes
// from false to true.
func (s *AuthService) VerifyEmail(ctx context.Context, rawKey string) (*User, error) {
	user, err := s.ResolveChallenge(ctx, rawKey, ChallengeVerify)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidChallenge
	}
	verified, cleared := true, ""
	if err := s.store.UpdateUser(ctx, user.UserID, UserPatch{Verified: &verified, VerifyKey: &cleared}); err != nil {
		return nil, err
	}
	user.Verified = true
	user.VerifyKey = ""
	return user, nil
}

// ForgotPassword sends a reset challenge when email belongs to an account.
// Unknown addresses are not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	_, err = s.IssueResetChallenge(ctx, user)
	return err
}

// ResetPassword consumes a reset key and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, rawKey, password, repeat string) error {
	if password != repeat {
		return &ValidationError{Reason: "Your passwords do not match"}
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	user, err := s.ResolveChallenge(ctx, rawKey, ChallengeReset)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidChallenge
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.UserID, hash); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("userid", user.UserID))
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.store.GetUser(ctx, userID)
}
