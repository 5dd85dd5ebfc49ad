package app

import (
	"context"

	"github.com/cimillas/bookstore-backoffice/internal/auth"
	"github.com/cimillas/bookstore-backoffice/internal/clock"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (domain.User, error)
	UpdateSecretKey(ctx context.Context, id int64, secretKey string) error
	SoftDeleteUser(ctx context.Context, id int64) error
}

type TokenIssuer interface {
	IssuePair(userID int64, secretKey string) (auth.TokenPair, error)
	Parse(token string) (auth.Claims, error)
}

// UserCache is an optional read-through cache in front of the user store,
// consulted on every authenticated request. Implementations must tolerate
// being down; a cache miss or cache error just falls back to the repository.
type UserCache interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, u domain.User) error
	Invalidate(ctx context.Context, id int64) error
}

// AuthService owns operator accounts and token issuance. Tokens are signed
// with the system secret and bound to a per-user secret key; rotating the key
// on logout revokes everything previously issued.
type AuthService struct {
	repo   UserRepository
	issuer TokenIssuer
	clock  clock.Clock
	cache  UserCache
}

type AuthServiceOption func(*AuthService)

// WithUserCache plugs a cache in front of user lookups on the hot
// authentication path.
func WithUserCache(cache UserCache) AuthServiceOption {
	return func(s *AuthService) {
		s.cache = cache
	}
}

func NewAuthService(repo UserRepository, issuer TokenIssuer, clk clock.Clock, opts ...AuthServiceOption) *AuthService {
	svc := &AuthService{
		repo:   repo,
		issuer: issuer,
		clock:  clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RegisterInput struct {
	RealName string
	Role     string
	Password string
}

// Register creates an operator account. Only super admins may call this; the
// transport layer enforces that before handing over.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if in.RealName == "" {
		return domain.User{}, domain.ErrRealNameRequired
	}
	if in.Password == "" {
		return domain.User{}, domain.ErrPasswordRequired
	}
	role := in.Role
	if role == "" {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	secretKey, err := auth.NewSecretKey("")
	if err != nil {
		return domain.User{}, err
	}

	return s.repo.CreateUser(ctx, domain.User{
		RealName:     in.RealName,
		Role:         role,
		PasswordHash: string(hash),
		SecretKey:    secretKey,
		CreatedAt:    s.clock.Now(),
	})
}

type LoginInput struct {
	UserID   int64
	Password string
}

// Login verifies credentials and issues an access/refresh pair. A deleted
// account fails the same way as a wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (auth.TokenPair, error) {
	user, err := s.repo.GetUser(ctx, in.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return auth.TokenPair{}, domain.ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}
	if user.IsDeleted {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}
	return s.issuer.IssuePair(user.ID, user.SecretKey)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	user, err := s.verifyToken(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return s.issuer.IssuePair(user.ID, user.SecretKey)
}

// Logout rotates the user's secret key, revoking every outstanding token.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	secretKey, err := auth.NewSecretKey(user.SecretKey)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSecretKey(ctx, userID, secretKey); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Authenticate resolves an access token to its live account: parse and
// validate first, then authorize the claims against the stored secret key.
// This is the extract-identity → authorize pipeline behind every protected
// endpoint.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.User, error) {
	return s.verifyToken(ctx, accessToken, auth.TokenTypeAccess)
}

func (s *AuthService) verifyToken(ctx context.Context, token, wantType string) (domain.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	if claims.TokenType != wantType {
		return domain.User{}, domain.ErrTokenInvalid
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, domain.ErrTokenInvalid
		}
		return domain.User{}, err
	}
	if user.IsDeleted || user.SecretKey != claims.SecretKey {
		return domain.User{}, domain.ErrTokenInvalid
	}
	return user, nil
}

// GetUser returns an account, restricted to the requester itself unless the
// requester is a super admin.
func (s *AuthService) GetUser(ctx context.Context, requester domain.User, id int64) (domain.User, error) {
	if err := allowSelfOrSuperAdmin(requester, id); err != nil {
		return domain.User{}, err
	}
	return s.repo.GetUser(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context, requester domain.User, page, pageSize int) ([]domain.User, error) {
	if requester.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListUsers(ctx, page, pageSize)
}

type UpdateUserInput struct {
	RealName *string
	Role     *string
	Password *string
}

// UpdateUser applies a partial update. Role changes are super-admin only;
// everything else is self-or-super-admin.
func (s *AuthService) UpdateUser(ctx context.Context, requester domain.User, id int64, in UpdateUserInput) (domain.User, error) {
	if err := allowSelfOrSuperAdmin(requester, id); err != nil {
		return domain.User{}, err
	}
	if in.Role != nil && requester.Role != domain.RoleSuperAdmin {
		return domain.User{}, domain.ErrForbidden
	}

	update := domain.UserUpdate{
		RealName: in.RealName,
		Role:     in.Role,
	}
	if in.Password != nil {
		if *in.Password == "" {
			return domain.User{}, domain.ErrPasswordRequired
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	user, err := s.repo.UpdateUser(ctx, id, update)
	if err != nil {
		return domain.User{}, err
	}
	s.invalidate(ctx, id)
	return user, nil
}

// DeleteUser soft-deletes an account; super-admin only.
func (s *AuthService) DeleteUser(ctx context.Context, requester domain.User, id int64) error {
	if requester.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	if err := s.repo.SoftDeleteUser(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, id int64) (domain.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
			return *cached, nil
		}
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, user)
	}
	return user, nil
}

func (s *AuthService) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}
}

func allowSelfOrSuperAdmin(requester domain.User, id int64) error {
	if requester.ID == id || requester.Role == domain.RoleSuperAdmin {
		return nil
	}
	return domain.ErrForbidden
}
