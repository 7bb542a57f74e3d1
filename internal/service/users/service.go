package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/auth"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/repository"
	"github.com/mkjeong/leadnet/internal/util"
)

const minPasswordLen = 8

// Resolver maps an actor to its downline scope.
type Resolver interface {
	ResolveDescendants(ctx context.Context, actorID string, includeSelf bool) ([]string, error)
}

// RegisterInput carries the fields accepted at registration. Referrer, when
// set, must name an existing user; it is assigned once and never rewired by
// the user themselves, which keeps the referrer relation acyclic.
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Password  string `json:"password"`
	Referrer  string `json:"referrer"`
}

// Service owns account lifecycle and network queries over users.
type Service struct {
	users     repository.UsersRepository
	hierarchy Resolver
	tokens    *auth.TokenManager
}

func New(users repository.UsersRepository, resolver Resolver, tokens *auth.TokenManager) *Service {
	return &Service{users: users, hierarchy: resolver, tokens: tokens}
}

// Register creates a new account and returns its id.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	referrer := strings.TrimSpace(in.Referrer)

	if email == "" || username == "" {
		return "", apperr.Validationf("email and username are required")
	}
	if len(in.Password) < minPasswordLen {
		return "", apperr.Validationf("password must be at least %d characters", minPasswordLen)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return "", err
	} else if existing != nil {
		return "", apperr.Validationf("email %s already registered", email)
	}
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return "", err
	} else if existing != nil {
		return "", apperr.Validationf("username %s already taken", username)
	}
	if referrer != "" {
		ref, err := s.users.GetByUsername(ctx, referrer)
		if err != nil {
			return "", err
		}
		if ref == nil {
			return "", apperr.Validationf("referrer %s does not exist", referrer)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		ID:           util.NewID(),
		Username:     username,
		Email:        email,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		PasswordHash: string(hash),
		Status:       "active",
		Referrer:     referrer,
		UserLevel:    1,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if u == nil || u.Status != "active" {
		return "", fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	return s.tokens.Generate(*u)
}

// GetUserInfo loads the actor's own account.
func (s *Service) GetUserInfo(ctx context.Context, actorID string) (*model.User, error) {
	if actorID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("user %s", actorID)
	}
	return u, nil
}

// IsAdmin reports whether the actor holds the admin capability.
func (s *Service) IsAdmin(ctx context.Context, actorID string) (bool, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	return u != nil && u.IsAdmin(), nil
}

// UsersUnderNetwork pages through the accounts inside the actor's downline,
// newest first, with the total for the same scope.
func (s *Service) UsersUnderNetwork(ctx context.Context, actorID string, limit, offset int) (model.UserPage, error) {
	scope, err := s.hierarchy.ResolveDescendants(ctx, actorID, true)
	if err != nil {
		return model.UserPage{}, err
	}
	users, err := s.users.ListByUsernames(ctx, scope, limit, offset)
	if err != nil {
		return model.UserPage{}, err
	}
	total, err := s.users.CountByUsernames(ctx, scope)
	if err != nil {
		return model.UserPage{}, err
	}
	return model.UserPage{Users: users, Total: total}, nil
}

// UsernamesUnderNetwork returns the actor's downline usernames, self included.
func (s *Service) UsernamesUnderNetwork(ctx context.Context, actorID string) ([]string, error) {
	return s.hierarchy.ResolveDescendants(ctx, actorID, true)
}

// UpdateUser applies an admin-gated patch to the target account. A patched
// referrer must name an existing user.
func (s *Service) UpdateUser(ctx context.Context, actorID, targetID string, patch model.UserPatch) (*model.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("user %s", targetID)
	}

	apply := func(dst *string, src *string) {
		if src == nil {
			return
		}
		if v := strings.TrimSpace(*src); v != "" {
			*dst = v
		}
	}
	apply(&u.Username, patch.Username)
	apply(&u.Firstname, patch.Firstname)
	apply(&u.Lastname, patch.Lastname)
	apply(&u.Email, patch.Email)
	apply(&u.Status, patch.Status)

	if patch.Referrer != nil {
		if ref := strings.TrimSpace(*patch.Referrer); ref != "" {
			refUser, err := s.users.GetByUsername(ctx, ref)
			if err != nil {
				return nil, err
			}
			if refUser == nil {
				return nil, apperr.Validationf("referrer %s does not exist", ref)
			}
			u.Referrer = ref
		}
	}
	if patch.UserLevel != nil && *patch.UserLevel > 0 {
		u.UserLevel = *patch.UserLevel
	}

	if err := s.users.Save(ctx, *u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// DeleteUser removes the target account. Admin only.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	ok, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("user %s", targetID)
	}
	return nil
}

// ChangePassword rehashes and stores the actor's own password.
func (s *Service) ChangePassword(ctx context.Context, actorID, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validationf("password must be at least %d characters", minPasswordLen)
	}
	u, err := s.GetUserInfo(ctx, actorID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	if err := s.users.Save(ctx, *u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, actorID string) error {
	if actorID == "" {
		return apperr.ErrUnauthenticated
	}
	ok, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: admin access only", apperr.ErrUnauthorized)
	}
	return nil
}
