package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuslink/warden/config"
	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/internal/metrics"
	"github.com/campuslink/warden/internal/otc"
	"github.com/campuslink/warden/password"
	"github.com/campuslink/warden/ports"
)

// AuthService orchestrates credential verification, the one-time-code
// challenge lifecycle, and session token issuance.
type AuthService struct {
	identity   ports.IdentityStore
	store      ports.ChallengeStore
	tokenizer  ports.Tokenizer
	dispatcher *Dispatcher
	limiter    *RateLimiter
	events     ports.EventPublisher
	metrics    *metrics.Metrics
	log        *slog.Logger

	secondFactor bool
	otcLength    int
	otcTTL       time.Duration

	// dummyHash absorbs a password comparison when the identifier is
	// unknown, so the miss path costs the same as a mismatch.
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	cfg config.Config,
	identity ports.IdentityStore,
	store ports.ChallengeStore,
	tokenizer ports.Tokenizer,
	dispatcher *Dispatcher,
	events ports.EventPublisher,
	m *metrics.Metrics,
	log *slog.Logger,
) (*AuthService, error) {
	dummy, err := password.Hash("warden-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		identity:     identity,
		store:        store,
		tokenizer:    tokenizer,
		dispatcher:   dispatcher,
		limiter:      NewRateLimiter(store, cfg.RateLimitCount, cfg.RateLimitWindow),
		events:       events,
		metrics:      m,
		log:          log,
		secondFactor: cfg.SecondFactorEnabled,
		otcLength:    cfg.OTCLength,
		otcTTL:       cfg.OTCTTL,
		dummyHash:    dummy,
	}, nil
}

// SignupInput is the registration request.
type SignupInput struct {
	Identifier  string
	Password    string
	DisplayName string
	Contact     string
	Role        core.Role
}

// SignupResult is the registration outcome. Token is set only when the
// second factor is disabled.
type SignupResult struct {
	User  *core.User
	Token string
}

// LoginResult is the credential-check outcome. When OTPRequired is set the
// caller holds only the opaque SessionToken; User and Token are set only
// when the second factor is disabled.
type LoginResult struct {
	OTPRequired  bool
	SessionToken string
	User         *core.User
	Token        string
}

// AuthResult is a completed authentication: the identity plus its signed
// session token.
type AuthResult struct {
	User  *core.User
	Token string
}

// Signup registers a new identity.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if in.Identifier == "" || in.Password == "" || in.DisplayName == "" {
		return nil, fmt.Errorf("%w: identifier, password and display name are required", core.ErrValidation)
	}
	if in.Role == "" {
		in.Role = core.RoleStudent
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Identifier:   in.Identifier,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Role:         in.Role,
		Contact:      in.Contact,
	}

	if err := s.identity.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateIdentifier) {
			return nil, core.ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)

	if s.secondFactor {
		return &SignupResult{User: user}, nil
	}

	token, err := s.tokenizer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &SignupResult{User: user, Token: token}, nil
}

// Login checks credentials and, when the second factor is enabled, issues a
// one-time-code challenge. Unknown identifier and wrong password produce
// the identical ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, plaintext string) (*LoginResult, error) {
	if identifier == "" || plaintext == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", core.ErrValidation)
	}

	user, err := s.identity.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Burn a comparison so the miss is indistinguishable
			// from a mismatch.
			password.Verify(plaintext, s.dummyHash)
			s.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		s.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, core.ErrInvalidCredentials
	}

	if !s.secondFactor {
		token, err := s.tokenizer.Issue(user.ID, user.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to issue token: %w", err)
		}
		s.metrics.Logins.WithLabelValues("success").Inc()
		s.publishLogin(ctx, user.ID)
		return &LoginResult{User: user, Token: token}, nil
	}

	sessionToken, err := s.issueChallenge(ctx, user.ID, user.Contact, true)
	if err != nil {
		return nil, err
	}

	s.metrics.Logins.WithLabelValues("otp_required").Inc()
	return &LoginResult{OTPRequired: true, SessionToken: sessionToken}, nil
}

// VerifyOTC redeems a challenge. Validation order: session exists, not
// used, not expired, code matches. Redemption itself is arbitrated by the
// store's atomic mark-used, so concurrent verifiers cannot both succeed.
func (s *AuthService) VerifyOTC(ctx context.Context, sessionToken, code string) (*AuthResult, error) {
	if sessionToken == "" || code == "" {
		return nil, fmt.Errorf("%w: session token and code are required", core.ErrValidation)
	}

	challenge, err := s.store.FetchByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.metrics.Verifications.WithLabelValues("invalid_session").Inc()
			return nil, core.ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}

	if challenge.Used {
		s.metrics.Verifications.WithLabelValues("already_used").Inc()
		return nil, core.ErrAlreadyUsed
	}
	if challenge.Expired(time.Now()) {
		s.metrics.Verifications.WithLabelValues("expired").Inc()
		return nil, core.ErrExpired
	}
	if otc.HashCode(code) != challenge.CodeHash {
		s.metrics.Verifications.WithLabelValues("invalid_code").Inc()
		return nil, core.ErrInvalidCode
	}

	if err := s.store.MarkUsed(ctx, sessionToken); err != nil {
		switch {
		case errors.Is(err, core.ErrAlreadyUsed):
			// Lost the race against a concurrent verifier.
			s.metrics.Verifications.WithLabelValues("already_used").Inc()
			return nil, core.ErrAlreadyUsed
		case errors.Is(err, core.ErrNotFound):
			s.metrics.Verifications.WithLabelValues("invalid_session").Inc()
			return nil, core.ErrInvalidSession
		default:
			return nil, fmt.Errorf("failed to mark challenge used: %w", err)
		}
	}

	user, err := s.identity.FindByID(ctx, challenge.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	token, err := s.tokenizer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.Verifications.WithLabelValues("success").Inc()
	if err := s.events.PublishVerified(ctx, user.ID); err != nil {
		s.log.Warn("failed to publish verified event", "user_id", user.ID, "error", err)
	}
	s.publishLogin(ctx, user.ID)

	return &AuthResult{User: user, Token: token}, nil
}

// ResendOTC invalidates the prior challenge and issues a fresh one for the
// same identity and contact. Resend draws from the same rate-limit budget
// as login.
func (s *AuthService) ResendOTC(ctx context.Context, sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", fmt.Errorf("%w: session token is required", core.ErrValidation)
	}

	challenge, err := s.store.FetchByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.ErrInvalidSession
		}
		return "", fmt.Errorf("failed to fetch challenge: %w", err)
	}
	if challenge.Used {
		return "", core.ErrAlreadyUsed
	}

	if err := s.limiter.Check(ctx, challenge.Contact); err != nil {
		return "", s.rateLimitOrInternal(err)
	}

	// Only the newest code/token pair stays redeemable. A concurrent
	// verify may have already consumed the old challenge; that race is
	// benign, the new challenge supersedes it either way.
	if err := s.store.MarkUsed(ctx, sessionToken); err != nil && !errors.Is(err, core.ErrAlreadyUsed) {
		return "", fmt.Errorf("failed to invalidate prior challenge: %w", err)
	}

	return s.issueChallenge(ctx, challenge.UserID, challenge.Contact, false)
}

// Authenticate validates a bearer session token and resolves its identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.User, error) {
	grant, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	user, err := s.identity.FindByID(ctx, grant.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}
	return user, nil
}

// issueChallenge runs the gate-generate-persist-dispatch sequence. The rate
// limiter is consulted only when checkLimit is set; resend checks it before
// invalidating the prior challenge.
func (s *AuthService) issueChallenge(ctx context.Context, userID, contact string, checkLimit bool) (string, error) {
	if checkLimit {
		if err := s.limiter.Check(ctx, contact); err != nil {
			return "", s.rateLimitOrInternal(err)
		}
	}

	code, err := otc.Code(s.otcLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	token, err := otc.SessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	challenge := &core.Challenge{
		Token:     token,
		UserID:    userID,
		Contact:   contact,
		CodeHash:  otc.HashCode(code),
		CreatedAt: now,
		ExpiresAt: now.Add(s.otcTTL),
	}

	if err := s.store.Create(ctx, challenge); err != nil {
		// Never retried within the request: a retry could double-issue.
		return "", fmt.Errorf("failed to persist challenge: %w", err)
	}

	channel := s.dispatcher.Deliver(ctx, contact, code)
	s.metrics.Deliveries.WithLabelValues(channel).Inc()
	s.metrics.ChallengesIssued.Inc()

	if err := s.events.PublishChallengeIssued(ctx, userID, contact); err != nil {
		s.log.Warn("failed to publish challenge event", "user_id", userID, "error", err)
	}

	s.log.Info("challenge issued",
		"user_id", userID,
		"channel", channel,
		"token_prefix", token[:8],
	)

	return token, nil
}

func (s *AuthService) rateLimitOrInternal(err error) error {
	var rl *core.RateLimitError
	if errors.As(err, &rl) {
		s.metrics.RateLimited.Inc()
		return rl
	}
	return err
}

func (s *AuthService) publishLogin(ctx context.Context, userID string) {
	if err := s.events.PublishLogin(ctx, userID); err != nil {
		s.log.Warn("failed to publish login event", "user_id", userID, "error", err)
	}
}
