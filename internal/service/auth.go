// Package service contains application services for identity and the course catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/coursemart/internal/crypto"
	"github.com/and161185/coursemart/internal/errs"
	"github.com/and161185/coursemart/internal/limiter"
	"github.com/and161185/coursemart/internal/model"
	"github.com/and161185/coursemart/internal/repository"
)

// Credentials is the signup/login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenIssuer issues role-carrying bearer tokens.
type TokenIssuer interface {
	Issue(username string, role model.Role) (model.Tokens, error)
}

// AuthService defines registration and authentication of principals.
type AuthService interface {
	// RegisterAdmin creates an admin and returns a fresh admin token.
	RegisterAdmin(ctx context.Context, c Credentials) (model.Tokens, error)
	// RegisterUser creates a user and returns a fresh user token.
	RegisterUser(ctx context.Context, c Credentials) (model.Tokens, error)
	// LoginWithIP applies rate-limiting and authenticates a principal of the given role.
	LoginWithIP(ctx context.Context, role model.Role, c Credentials, ip string) (model.Tokens, error)
}

type AuthServiceImpl struct {
	principals repository.PrincipalRepository
	tokens     TokenIssuer
	lim        limiter.Limiter
	log        *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(principals repository.PrincipalRepository, tokens TokenIssuer, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{principals: principals, tokens: tokens, lim: lim, log: log}
}

// RegisterAdmin creates a new admin record with a per-principal salt.
func (s *AuthServiceImpl) RegisterAdmin(ctx context.Context, c Credentials) (model.Tokens, error) {
	return s.register(ctx, model.RoleAdmin, c)
}

// RegisterUser creates a new user record with an empty purchase set.
func (s *AuthServiceImpl) RegisterUser(ctx context.Context, c Credentials) (model.Tokens, error) {
	return s.register(ctx, model.RoleUser, c)
}

func (s *AuthServiceImpl) register(ctx context.Context, role model.Role, c Credentials) (model.Tokens, error) {
	if err := check(c); err != nil {
		return model.Tokens{}, err
	}
	hash, salt, err := pkgcrypto.NewCredential(c.Password)
	if err != nil {
		return model.Tokens{}, err
	}
	p := model.Principal{
		Username:  c.Username,
		PwdHash:   hash,
		SaltAuth:  salt,
		CreatedAt: time.Now().UTC(),
	}

	switch role {
	case model.RoleAdmin:
		err = s.principals.CreateAdmin(ctx, &model.Admin{Principal: p})
	default:
		err = s.principals.CreateUser(ctx, &model.User{Principal: p})
	}
	if err != nil {
		return model.Tokens{}, fmt.Errorf("register %s: %w", role, err)
	}
	s.log.Info("principal registered", zap.String("role", string(role)), zap.String("username", c.Username))

	return s.tokens.Issue(c.Username, role)
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, role model.Role, c Credentials, ip string) (model.Tokens, error) {
	if err := check(c); err != nil {
		return model.Tokens{}, err
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, c.Username, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	p, err := s.lookup(ctx, role, c.Username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(c.Password), p.SaltAuth, p.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, c.Username, ipHash); ferr == nil && blocked {
			s.log.Warn("login blocked", zap.String("role", string(role)), zap.String("username", c.Username))
			return model.Tokens{}, errs.ErrRateLimited
		}
		// unknown user and wrong password look the same
		return model.Tokens{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, c.Username, ipHash)

	return s.tokens.Issue(c.Username, role)
}

func (s *AuthServiceImpl) lookup(ctx context.Context, role model.Role, username string) (model.Principal, error) {
	switch role {
	case model.RoleAdmin:
		a, err := s.principals.GetAdmin(ctx, username)
		if err != nil {
			return model.Principal{}, err
		}
		return a.Principal, nil
	case model.RoleUser:
		u, err := s.principals.GetUser(ctx, username)
		if err != nil {
			return model.Principal{}, err
		}
		return u.Principal, nil
	default:
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", errs.ErrValidation, role)
	}
}
