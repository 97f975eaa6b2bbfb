package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gifstore/internal/access"
	"gifstore/internal/logging"
	"gifstore/internal/model"
	"gifstore/internal/repository"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 30
)

// errInvalidCredentials is deliberately the same for unknown email and wrong password.
var errInvalidCredentials = fmt.Errorf("%w: invalid login credentials", ErrUnauthenticated)

// TokenIssuer signs identities into bearer tokens.
type TokenIssuer interface {
	Issue(id access.Identity) (string, time.Time, error)
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
}

// Session is returned on login and whenever the token is re-issued.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserService manages accounts.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.UserSummary, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// UpdateFullname renames the requester and returns a fresh token carrying the new name.
	UpdateFullname(ctx context.Context, requester *access.Identity, fullname string) (*Session, error)
	UpdatePassword(ctx context.Context, requester *access.Identity, password string) error
}

type userService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    *slog.Logger
	cost   int
	now    func() time.Time
}

// NewUserService constructs a new UserService. A nil logger discards output.
func NewUserService(users repository.UserRepository, tokens TokenIssuer, logger *slog.Logger) UserService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &userService{
		users:  users,
		tokens: tokens,
		log:    logger,
		cost:   bcrypt.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationf("email is not valid")
	}
	return email, nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return validationf("password must be %d to %d characters", minPasswordLen, maxPasswordLen)
	}
	// bcrypt refuses more than 72 bytes
	if len(password) > 72 {
		return validationf("password is too long")
	}
	return nil
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.UserSummary, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" {
		return nil, validationf("fullname is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user with this email is already registered", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fromRepo(err, "user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Fullname:     fullname,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email is already registered", ErrConflict)
		}
		return nil, fromRepo(err, "create user")
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	summary := u.Summary()
	return &summary, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fromRepo(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.session(u)
}

func (s *userService) session(u *model.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(access.Identity{ID: u.ID, Email: u.Email, Fullname: u.Fullname})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{ID: u.ID, Email: u.Email, Fullname: u.Fullname, Token: token, ExpiresAt: exp}, nil
}

// currentUser loads the account behind requester. A token for a deleted
// account counts as unauthenticated.
func (s *userService) currentUser(ctx context.Context, requester *access.Identity) (*model.User, error) {
	if requester == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, requester.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fromRepo(err, "user")
	}
	return u, nil
}

func (s *userService) UpdateFullname(ctx context.Context, requester *access.Identity, fullname string) (*Session, error) {
	fullname = strings.TrimSpace(fullname)
	if fullname == "" {
		return nil, validationf("fullname is required")
	}
	u, err := s.currentUser(ctx, requester)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFullname(ctx, u.ID, fullname); err != nil {
		return nil, fromRepo(err, "user")
	}
	u.Fullname = fullname
	return s.session(u)
}

func (s *userService) UpdatePassword(ctx context.Context, requester *access.Identity, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	u, err := s.currentUser(ctx, requester)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fromRepo(err, "user")
	}
	s.log.InfoContext(ctx, "password updated", "user_id", u.ID)
	return nil
}
