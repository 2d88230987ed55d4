package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rrhh/internal/platform/querier"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl}
}

type LoginResult struct {
	Token string       `json:"token"`
	User  LoginSummary `json:"user"`
}

type LoginSummary struct {
	ID           int64  `json:"id"`
	EmployeeID   int64  `json:"employeeId"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	FullName     string `json:"fullName"`
	EmployeeCode string `json:"employeeCode"`
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.Store.FindByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	// Employees on approved vacation keep access; only deactivated ones lose it.
	if !user.IsActive || user.EmployeeStatus == "inactive" {
		return LoginResult{}, ErrUserInactive
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Username:   user.Username,
		Role:       user.Role,
	}, s.TTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}

	return LoginResult{
		Token: token,
		User: LoginSummary{
			ID:           user.ID,
			EmployeeID:   user.EmployeeID,
			Username:     user.Username,
			Role:         user.Role,
			FullName:     user.FirstName + " " + user.LastName,
			EmployeeCode: user.EmployeeCode,
		},
	}, nil
}

type RegisterInput struct {
	EmployeeID int64  `json:"employeeId" validate:"required,gt=0"`
	Username   string `json:"username" validate:"required,min=4"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required,oneof=admin supervisor employee"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	exists, err := s.Store.EmployeeExists(ctx, in.EmployeeID)
	if err != nil {
		return User{}, err
	}
	if !exists {
		return User{}, ErrEmployeeNotFound
	}
	taken, err := s.Store.UsernameTaken(ctx, in.Username)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrUsernameTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.Store.CreateUser(ctx, in.EmployeeID, in.Username, hash, in.Role)
	if querier.IsUniqueViolation(err) {
		return User{}, ErrUsernameTaken
	}
	return user, err
}

func (s *Service) Me(ctx context.Context, userID int64) (Profile, error) {
	return s.Store.Profile(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	hash, err := s.Store.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(hash, current); err != nil {
		return ErrWrongPassword
	}
	newHash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, userID, newHash)
}

// ActiveUser is used by the auth middleware to re-check accounts on every request.
func (s *Service) ActiveUser(ctx context.Context, userID int64) (UserContext, error) {
	return s.Store.ActiveUser(ctx, userID)
}
