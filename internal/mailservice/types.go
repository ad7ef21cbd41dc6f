package mailservice

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/blogcms/internal/common"
)

const (
	templateActivation = "activation_email.html"
	templateNewBlog    = "new_blog.html"

	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

type MailService struct {
	mb     common.MessageConsumer
	m      Mailer
	logger MailLogger
	editor string

	maxRetries int
	baseDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu        sync.Mutex
	dialer    Dialer
	templates TemplateRenderer
	sender    string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateRenderer interface {
	Render(name string, data any) (subject, plainBody, htmlBody *bytes.Buffer, err error)
}

// userCreated mirrors the user.created event body.
type userCreated struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// blogCreated mirrors the blog.created event body.
type blogCreated struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Author string `json:"author"`
}
