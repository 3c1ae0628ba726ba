package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/metrics"
	"github.com/sinuca-magalhaes/caixa/internal/pkg/crypto"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

// TokenProvider issues and validates access tokens.
type TokenProvider interface {
	Issue(subject string) (*auth.Token, error)
	Validate(token string) (*auth.Claims, error)
}

// dummyPassword is hashed once so unknown usernames cost a full bcrypt
// comparison, like a wrong password does.
const dummyPassword = "caixa-timing-equalizer"

// UserService handles registration, login and token authentication.
type UserService struct {
	userRepo repository.UserRepository
	hasher   crypto.PasswordHasher
	tokens   TokenProvider
	throttle *LoginThrottle
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// UserServiceOption configures optional UserService collaborators.
type UserServiceOption func(*UserService)

// WithLoginThrottle enables failed-login throttling.
func WithLoginThrottle(t *LoginThrottle) UserServiceOption {
	return func(s *UserService) { s.throttle = t }
}

// WithUserMetrics records login outcomes.
func WithUserMetrics(m *metrics.Metrics) UserServiceOption {
	return func(s *UserService) { s.metrics = m }
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	hasher crypto.PasswordHasher,
	tokens TokenProvider,
	logger zerolog.Logger,
	opts ...UserServiceOption,
) *UserService {
	s := &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger.With().Str("service", "user").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput contains the data needed to create a new user.
type RegisterInput struct {
	Username string
	Password string
}

// Register creates a new user account. A taken username yields
// domain.ErrUserAlreadyExists; the unique index decides, not a prior lookup.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrEmptyPassword) || errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
		}
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, passwordHash)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user created")

	return user, nil
}

// LoginInput contains login credentials.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and issues an access token whose subject is the
// username. Unknown users and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*auth.Token, error) {
	if !s.throttle.Allow(ctx, input.Username) {
		s.logger.Info().Str("username", input.Username).Msg("login throttled")
		s.metrics.RecordLogin(metrics.LoginThrottled)
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Error().Err(err).Msg("failed to look up user")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		// Log but don't expose whether username exists
		s.logger.Debug().Str("username", input.Username).Msg("user not found during login")
		s.hasher.Verify(input.Password, s.dummy())
		return nil, s.loginFailed(ctx, input.Username)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.logger.Debug().Str("username", input.Username).Msg("invalid password during login")
		return nil, s.loginFailed(ctx, input.Username)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.throttle.Reset(ctx, input.Username)
	s.metrics.RecordLogin(metrics.LoginSuccess)

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user logged in")

	return token, nil
}

func (s *UserService) loginFailed(ctx context.Context, username string) error {
	s.throttle.Fail(ctx, username)
	s.metrics.RecordLogin(metrics.LoginFailure)
	return ErrInvalidCredentials
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash dummy password")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Authenticate resolves a bearer token into its user. Every credential
// problem returns ErrUnauthorized; only the log says which one it was.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		if auth.IsTokenError(err) {
			s.logger.Debug().Err(err).Msg("token rejected")
		} else {
			s.logger.Warn().Err(err).Msg("token validation failed unexpectedly")
		}
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Str("username", claims.Subject).Msg("token subject no longer exists")
			return nil, ErrUnauthorized
		}
		s.logger.Error().Err(err).Msg("failed to look up token subject")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// List returns registered users ordered by ID.
func (s *UserService) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	result, err := s.userRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return result, nil
}

// Ensure UserService implements auth.Authenticator.
var _ auth.Authenticator = (*UserService)(nil)
