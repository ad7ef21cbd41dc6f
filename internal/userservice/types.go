package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogcms/internal/common"
)

type tokenScope string

type Permission string
type Permissions []Permission

const (
	TokenScopeActivate tokenScope = "activation"
	TokenScopeAccess   tokenScope = "authentication"

	ActivationTokenTime time.Duration = 3 * 24 * time.Hour
	AccessTokenTime     time.Duration = 7 * 24 * time.Hour

	PermissionWriteBlog Permission = "blog:write"
)

var (
	AnonymousUser = &User{}
)

type UserService struct {
	m      *UserModel
	t      *TokenModel
	mb     common.MessageProducer
	c      *common.Cache
	logger *slog.Logger
}

type UserModel struct {
	db *sql.DB
}

type TokenModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"-"`

	Permissions Permissions `json:"permissions"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type Token struct {
	Plain  string     `json:"token"`
	Hash   []byte     `json:"-"`
	UserID int        `json:"-"`
	Expiry time.Time  `json:"expiry"`
	Scope  tokenScope `json:"-"`
}

// UserCreatedEvent is published on the user exchange after registration.
type UserCreatedEvent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}
