package services

import (
	"errors"
	"strings"

	"pujcovna/internal/auth"
	"pujcovna/internal/domain"
	"pujcovna/internal/repos"
	"pujcovna/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.Issuer
}

func NewAuthService(users *repos.UserRepo, tokens *auth.Issuer) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

func (s *AuthService) Login(email, password string) (*domain.User, auth.AccessToken, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, auth.AccessToken{}, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, auth.AccessToken{}, ErrBadCreds
	}
	tok, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, auth.AccessToken{}, err
	}
	return u, tok, nil
}

// Authenticate resolves a bearer token to its claims.
func (s *AuthService) Authenticate(raw string) (*auth.Claims, error) {
	return s.Tokens.Parse(raw)
}

func (s *AuthService) ListUsers() ([]domain.User, error) {
	return s.Users.List()
}

type UserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *AuthService) CreateUser(in UserInput) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, domain.ValidationError{Field: "email", Msg: "invalid email"}
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, domain.ValidationError{Field: "name", Msg: "required, at most 120 characters"}
	}
	if !validate.Password(in.Password) {
		return nil, domain.ValidationError{Field: "password", Msg: "8-72 characters with lower, upper, digit and symbol"}
	}
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = domain.RoleStaff
	}
	if role != domain.RoleStaff && role != domain.RoleAdmin {
		return nil, domain.ValidationError{Field: "role", Msg: "must be STAFF or ADMIN"}
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(hash), Role: role}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser refuses to remove the acting account.
func (s *AuthService) DeleteUser(id, actingUserID string) error {
	if id == actingUserID {
		return domain.ConflictError{Resource: "user", Msg: "cannot delete your own account"}
	}
	return s.Users.Delete(id)
}
