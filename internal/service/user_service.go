package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expenseflow/internal/domain"
	"expenseflow/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when registering or renaming to an existing username.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrEmailTaken is returned when registering or changing to an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrValidation wraps request payload validation failures.
	ErrValidation = errors.New("validation failed")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateProfileInput carries profile changes; an empty Password leaves it unchanged.
type UpdateProfileInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
}

func NewUserService(users repository.UserRepository, transactions repository.TransactionRepository) UserService {
	return &userService{
		users:        users,
		transactions: transactions,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		// Races on the unique indexes surface here.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.resolveDuplicate(ctx, in.Username)
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateProfile(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	usernameChanged := in.Username != user.Username
	if usernameChanged {
		if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrUsernameTaken
		}
	}
	if in.Email != user.Email {
		if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailTaken
		}
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName

	if in.Password != "" {
		if len(in.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Only a changed identifier can collide; an unchanged
			// username still matches its own row, so don't re-check it.
			if usernameChanged {
				return nil, s.resolveDuplicate(ctx, in.Username)
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.transactions.DeleteByUser(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// resolveDuplicate decides which unique identifier a racing write collided
// on, so the caller reports the right field.
func (s *userService) resolveDuplicate(ctx context.Context, username string) error {
	if taken, err := s.users.ExistsByUsername(ctx, username); err == nil && taken {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func validateRegistration(in RegisterInput) error {
	if err := validateProfile(UpdateProfileInput{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}); err != nil {
		return err
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	return nil
}

func validateProfile(in UpdateProfileInput) error {
	if len(in.Username) < 3 || len(in.Username) > 50 {
		return fmt.Errorf("%w: username must be between 3 and 50 characters", ErrValidation)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if in.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if in.LastName == "" {
		return fmt.Errorf("%w: last name is required", ErrValidation)
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
