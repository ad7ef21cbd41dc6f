package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/sushihentaime/blogcms/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, cache *common.Cache, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &UserService{
		m:      NewUserModel(db),
		t:      NewTokenModel(db),
		mb:     mb,
		c:      cache,
		logger: logger,
	}
}

// RegisterUser creates an inactive account and publishes a user.created event carrying the
// activation token.
func (s *UserService) RegisterUser(ctx context.Context, name, email, password string) (*User, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := &User{
		Name:  name,
		Email: email,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insert(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, common.InvalidFields(map[string]string{"email": "a user with this email address already exists"})
		default:
			return nil, err
		}
	}

	token, err := s.t.createToken(ctx, u.ID, ActivationTokenTime, TokenScopeActivate)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(UserCreatedEvent{Name: u.Name, Email: u.Email, Token: token.Plain})
	if err != nil {
		return nil, err
	}

	if s.mb != nil {
		err = s.mb.Publish(ctx, data, common.UserCreatedKey, common.UserExchange)
		if err != nil {
			return nil, err
		}
	}

	return u, nil
}

// ActivateUser activates the account owning token, deletes its activation tokens and grants
// the blog:write permission.
func (s *UserService) ActivateUser(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getForToken(ctx, TokenScopeActivate, hashToken(token))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, common.InvalidFields(map[string]string{"token": "invalid or expired activation token"})
		default:
			return nil, err
		}
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = s.m.activate(tx, ctx, user.ID, user.Version)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ErrEditConflict) {
			return nil, common.Conflict("unable to activate the user due to an edit conflict, please try again")
		}
		return nil, err
	}

	err = s.t.deleteAllForUser(tx, ctx, user.ID, TokenScopeActivate)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	err = s.m.addPermissions(tx, ctx, user.ID, PermissionWriteBlog)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	user.Activated = true
	user.Version++
	if !user.HasPermission(PermissionWriteBlog) {
		user.Permissions = append(user.Permissions, PermissionWriteBlog)
	}

	return user, nil
}

// LoginUser checks the credentials and returns a new access token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*Token, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, common.Unauthorized(ErrAuthenticationFailure.Error())
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, common.Unauthorized(ErrAuthenticationFailure.Error())
	}

	return s.t.createToken(ctx, user.ID, AccessTokenTime, TokenScopeAccess)
}

// GetUserByAccessToken resolves a bearer token to its owner. Results are cached by token hash.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, common.Unauthorized("invalid or missing authentication token")
	}

	hash := hashToken(token)

	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyUserByAccessToken(hash)); ok {
			u := cached.(User)
			return &u, nil
		}
	}

	user, err := s.m.getForToken(ctx, TokenScopeAccess, hash)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, common.Unauthorized("invalid or missing authentication token")
		default:
			return nil, err
		}
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyUserByAccessToken(hash), *user)
	}

	return user, nil
}

// LogoutUser deletes every access token the user holds.
func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.t.deleteAllForUser(tx, ctx, userID, TokenScopeAccess)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	// cached entries are keyed by token hash, which is not recoverable from the user id
	if s.c != nil {
		s.c.DeletePrefix(common.CacheKeyUserPrefix())
	}

	return nil
}
