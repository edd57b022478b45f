package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users      port.UserRepository
	businesses port.BusinessRepository
	mailer     port.Mailer
	cost       int

	async background
}

func NewUserService(users port.UserRepository, businesses port.BusinessRepository, mailer port.Mailer, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		businesses: businesses,
		mailer:     mailer,
		cost:       bcryptCost,
	}
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	City      string
	Age       int
	// BusinessName, when set, registers a business account owning a new business
	BusinessName string
}

func (in SignupInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return apperrors.Validation("first name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperrors.Validation("email %q is not valid", in.Email)
	}
	if in.Password == "" {
		return apperrors.Validation("password is required")
	}
	// bcrypt ignores anything past 72 bytes
	if len(in.Password) > 72 {
		return apperrors.Validation("password must be at most 72 bytes")
	}
	if in.Age < 0 || in.Age > 150 {
		return apperrors.Validation("age %d is not valid", in.Age)
	}
	return nil
}

// Signup hashes the password and stores the new user. The plaintext password
// is not kept anywhere.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	if err := in.validate(); err != nil {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, apperrors.WrapInternal(err, "hashing password")
	}

	user := models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hashedPassword),
		City:         strings.TrimSpace(in.City),
		Age:          in.Age,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	businessName := strings.TrimSpace(in.BusinessName)
	if businessName != "" {
		user.Role = models.RoleBusiness
	}

	user.ID, err = s.users.Create(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("users.Create: %w", err)
	}

	if businessName != "" {
		_, err := s.businesses.Create(ctx, models.Business{
			Name:    businessName,
			City:    user.City,
			OwnerID: user.ID,
		})
		if err != nil {
			// a business account without its business cannot sign up again
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				return models.User{}, fmt.Errorf("businesses.Create: %w", errors.Join(err, fmt.Errorf("users.Delete: %w", delErr)))
			}
			return models.User{}, fmt.Errorf("businesses.Create: %w", err)
		}
	}

	s.async.Go("welcome email", func(context.Context) error {
		return s.mailer.SendWelcomeEmail(user)
	})

	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown email
// and wrong password yield the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return models.User{}, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("users.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperrors.Unauthorized("invalid email or password")
	}

	return user, nil
}

// Wait blocks until pending welcome emails are sent.
func (s *UserService) Wait() {
	s.async.Wait()
}
