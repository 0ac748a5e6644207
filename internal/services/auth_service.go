package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/models"
	"github.com/jangbuk/volunteer-backend/internal/oauth"
	"github.com/jangbuk/volunteer-backend/internal/security"
	"github.com/jangbuk/volunteer-backend/internal/store"
	"github.com/jangbuk/volunteer-backend/internal/token"
)

var (
	ErrMissingFields = errors.New("email, password and name are required")
	ErrEmailTaken    = errors.New("email already registered")
	// ErrEmailLinked covers a social callback whose email belongs to an
	// account created through a different method. Merging is unsupported.
	ErrEmailLinked         = errors.New("email already registered with another method")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrSelfRoleChange      = errors.New("cannot change your own role")
)

// AuthService orchestrates registration, login, social callbacks, token
// refresh and profile updates into issued token pairs.
type AuthService struct {
	users     store.UserStore
	codec     *token.Codec
	resolvers oauth.Registry
}

func NewAuthService(users store.UserStore, codec *token.Codec, resolvers oauth.Registry) *AuthService {
	return &AuthService{users: users, codec: codec, resolvers: resolvers}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.users.ByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         models.RoleUser,
		Provider:     models.ProviderEmail,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issuePair(user)
}

// Login fails with one generic error for an unknown email, a wrong
// password, and a password-less social account alike.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if !security.VerifyPassword(req.Password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// SocialAuthURL builds the provider authorization redirect target.
func (s *AuthService) SocialAuthURL(provider string) (string, error) {
	resolver, err := s.resolvers.Lookup(provider)
	if err != nil {
		return "", err
	}
	return resolver.AuthURL(), nil
}

func (s *AuthService) SocialCallback(ctx context.Context, provider, code string) (*dto.AuthResponse, error) {
	resolver, err := s.resolvers.Lookup(provider)
	if err != nil {
		return nil, err
	}

	ident, err := resolver.Resolve(ctx, code)
	if err != nil {
		slog.Error("social identity resolution failed", "provider", provider, "error", err)
		return nil, err
	}

	user, err := s.findOrCreateSocial(ctx, ident)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user)
}

// findOrCreateSocial binds a normalized external identity to exactly one
// store row. Profile fields never overwrite an existing row; the store's
// uniqueness constraint is the authoritative conflict signal under
// concurrent duplicate callbacks.
func (s *AuthService) findOrCreateSocial(ctx context.Context, ident *oauth.Identity) (*models.User, error) {
	user, err := s.users.ByProviderIdentity(ctx, ident.Provider, ident.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up social identity: %w", err)
	}

	if _, err := s.users.ByEmail(ctx, ident.Email); err == nil {
		return nil, ErrEmailLinked
	}

	providerID := ident.ProviderID
	user = &models.User{
		ID:         uuid.New(),
		Email:      ident.Email,
		Name:       ident.Name,
		Role:       models.RoleUser,
		Provider:   ident.Provider,
		ProviderID: &providerID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailLinked
		}
		return nil, fmt.Errorf("failed to create social user: %w", err)
	}

	return user, nil
}

// Refresh verifies a refresh token and rotates the pair. The subject must
// still resolve to a stored user.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	subject, err := s.codec.Verify(req.RefreshToken, token.KindRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.ByID(ctx, subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.issuePair(user)
}

// UpdateProfile applies a partial patch: absent fields mean no change.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, req *dto.UpdateProfileRequest) (*models.User, error) {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// RegisterFCMToken stores the user's push-delivery address.
func (s *AuthService) RegisterFCMToken(ctx context.Context, user *models.User, fcmToken string) error {
	user.FCMToken = &fcmToken
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to store fcm token: %w", err)
	}
	return nil
}

// RegisterAdmin creates another admin account. Caller must already be
// admin-gated by the route.
func (s *AuthService) RegisterAdmin(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.users.ByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         models.RoleAdmin,
		Provider:     models.ProviderEmail,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out, nil
}

// UpdateUserRole changes another user's role. Admins cannot change their
// own role.
func (s *AuthService) UpdateUserRole(ctx context.Context, actor *models.User, targetID uuid.UUID, roleStr string) error {
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return err
	}

	target, err := s.users.ByID(ctx, targetID)
	if err != nil {
		return ErrUserNotFound
	}

	if target.ID == actor.ID {
		return ErrSelfRoleChange
	}

	target.Role = role
	if err := s.users.Save(ctx, target); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// EnsureInitialAdmin creates the bootstrap admin account at process start
// if no row exists for the configured email.
func (s *AuthService) EnsureInitialAdmin(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	if _, err := s.users.ByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to check initial admin: %w", err)
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash initial admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		Email:        cfg.AdminEmail,
		PasswordHash: &hash,
		Name:         cfg.AdminName,
		Role:         models.RoleAdmin,
		Provider:     models.ProviderEmail,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// A concurrent replica may have won the race; that still
		// satisfies the bootstrap requirement.
		if errors.Is(err, store.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create initial admin: %w", err)
	}

	slog.Info("initial admin account created", "email", cfg.AdminEmail)
	return nil
}

func (s *AuthService) issuePair(user *models.User) (*dto.AuthResponse, error) {
	access, refresh, err := s.codec.Pair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.NewUserResponse(user),
	}, nil
}
