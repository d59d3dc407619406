package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/constants"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"github.com/yukikurage/hr-task-review-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken           = errors.New("username already exists")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrPasswordTooShort        = errors.New("password too short")
	ErrUserNotFound            = errors.New("user not found")
	ErrFailedToHashPassword    = errors.New("failed to hash password")
	ErrFailedToCreateUser      = errors.New("failed to create user")
	ErrFailedToCreateWorkspace = errors.New("failed to create workspace")
	ErrFailedToAddMember       = errors.New("failed to add user to workspace")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	clock    clock.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, clk clock.Clock) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		clock:    clk,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new user along with a personal workspace they administer.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrFailedToCreateWorkspace
	}

	workspace := &models.Workspace{
		Name:       fmt.Sprintf("%s's workspace", user.Username),
		InviteCode: inviteCode,
	}

	member := &models.WorkspaceMember{
		Role:     models.RoleAdmin,
		JoinedAt: s.clock.Now(),
	}

	if err := s.userRepo.CreateWithPersonalWorkspace(user, workspace, member); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateWorkspace):
			return nil, ErrFailedToCreateWorkspace
		case errors.Is(err, repository.ErrCreateWorkspaceMember):
			return nil, ErrFailedToAddMember
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
