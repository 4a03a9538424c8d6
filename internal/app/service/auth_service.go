package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/common/security"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/domain/repository"
	"chatsql_backend/internal/platform/session"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	sessions session.Store
	ttl      time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sessions session.Store, ttl time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions, ttl: ttl}
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var credentialMessages = map[string]string{
	"Username.required": "Username and password required",
	"Password.required": "Username and password required",
	"Role.oneof":        "Invalid role. Must be 'student' or 'instructor'",
}

type AuthResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Role     string `json:"role"`
	UserID   int64  `json:"userId"`
}

// AuthResult carries the signed token the handler puts in the session cookie.
type AuthResult struct {
	AuthResponse
	Token string `json:"-"`
}

type MeResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
	UserID        int64  `json:"userId,omitempty"`
}

type ProfileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
	Message  string `json:"message"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, credentialMessages)
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.NewError(common.ErrConflict, "Username already exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("AuthService.Signup: %w", err)
	}
	if req.Email != "" {
		if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
			return nil, common.NewError(common.ErrConflict, "Email already exists")
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("AuthService.Signup: %w", err)
		}
	} else {
		req.Email = req.Username + "@example.com"
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		IsAdmin:      req.Role == model.RoleInstructor,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.openSession(ctx, user, "User created successfully")
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, credentialMessages)
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, "Invalid username or password")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, common.NewError(common.ErrUnauthorized, "Invalid username or password")
	}
	return s.openSession(ctx, user, "Login successful")
}

func (s *AuthService) openSession(ctx context.Context, user *model.User, message string) (*AuthResult, error) {
	sess := &session.Session{
		Key:      uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role(),
	}
	if err := s.sessions.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	token, err := security.GenerateSessionToken(sess.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	common.Logger().Info("auth: session opened", "user_id", user.ID, "username", user.Username)
	return &AuthResult{
		AuthResponse: AuthResponse{Message: message, Username: user.Username, Role: user.Role(), UserID: user.ID},
		Token:        token,
	}, nil
}

// Logout destroys sess. A nil session means the caller was not logged in.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.UserID == 0 {
		return common.NewError(common.ErrBadRequest, "User is not logged in")
	}
	if err := s.sessions.Delete(ctx, sess.Key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Me reports who the session belongs to. A session whose user was removed
// is destroyed.
func (s *AuthService) Me(ctx context.Context, sess *session.Session) (*MeResponse, error) {
	if sess == nil {
		return &MeResponse{}, nil
	}
	user, err := s.sessionUser(ctx, sess)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &MeResponse{}, nil
		}
		return nil, err
	}
	return &MeResponse{Authenticated: true, Username: user.Username, Role: user.Role(), UserID: user.ID}, nil
}

func (s *AuthService) Profile(ctx context.Context, sess *session.Session) (*ProfileResponse, error) {
	if sess == nil {
		return nil, common.NewError(common.ErrUnauthorized, "Authentication required")
	}
	user, err := s.sessionUser(ctx, sess)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "User not found")
		}
		return nil, err
	}
	return &ProfileResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role(),
		IsAdmin:  user.IsAdmin,
		Message:  "This is a protected endpoint",
	}, nil
}

func (s *AuthService) sessionUser(ctx context.Context, sess *session.Session) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		if delErr := s.sessions.Delete(ctx, sess.Key); delErr != nil {
			common.Logger().Warn("auth: failed to drop orphaned session", "error", delErr)
		}
		return nil, common.ErrNotFound
	}
	return nil, fmt.Errorf("failed to load session user: %w", err)
}

// IsInstructor re-reads the role from the users table instead of trusting
// the role cached in the session.
func (s *AuthService) IsInstructor(ctx context.Context, userID int64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("AuthService.IsInstructor: %w", err)
	}
	return user.IsAdmin, nil
}
