package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bus_tracker/internal/models"
	"bus_tracker/internal/transit"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, role transit.Role) (string, error)
}

// AuthService registers users and issues tokens. It is the identity
// collaborator for the rest of the API, nothing more.
type AuthService struct {
	users            UserRepository
	tokens           TokenIssuer
	allowAdminSignup bool
}

func NewAuthService(users UserRepository, tokens TokenIssuer, allowAdminSignup bool) *AuthService {
	return &AuthService{users: users, tokens: tokens, allowAdminSignup: allowAdminSignup}
}

// Session is a signed token and the user it identifies.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	role, err := transit.ParseRole(in.Role)
	if err != nil {
		return Session{}, transit.NewValidationError([]string{"invalid role"})
	}
	if role == transit.RoleAdmin && !s.allowAdminSignup {
		return Session{}, fmt.Errorf("%w: admin accounts cannot self-register", transit.ErrAuthorization)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if exists {
		return Session{}, fmt.Errorf("%w: email already in use", transit.ErrDuplicateKey)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("%w: hash password: %v", transit.ErrInternal, err)
	}
	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hash),
		Phone:    in.Phone,
		Role:     string(role),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return Session{}, err
	}
	return s.session(&user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, transit.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, actor transit.Actor) (*models.User, error) {
	return s.users.FindByID(ctx, actor.ID)
}

func (s *AuthService) session(user *models.User) (Session, error) {
	token, err := s.tokens.GenerateToken(user.ID, transit.Role(user.Role))
	if err != nil {
		return Session{}, fmt.Errorf("%w: could not generate token: %v", transit.ErrInternal, err)
	}
	return Session{Token: token, User: user}, nil
}
