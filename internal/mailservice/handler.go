package mailservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogcms/internal/common"
	"golang.org/x/exp/rand"
)

// NewMailService returns a service that mails activation tokens to new users and announces
// new posts to editor. An empty editor disables the announcements.
func NewMailService(mb common.MessageConsumer, m Mailer, editor string, logger MailLogger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          m,
		logger:     logger,
		editor:     editor,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// envelope is what a consumer decided to send for one delivery.
type envelope struct {
	recipient string
	template  string
	data      any
}

func (s *MailService) SendActivationEmail() error {
	return s.consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue, func(body []byte) (*envelope, error) {
		var data userCreated
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}

		return &envelope{
			recipient: data.Email,
			template:  templateActivation,
			data: struct {
				Name            string
				ActivationToken string
			}{
				Name:            data.Name,
				ActivationToken: data.Token,
			},
		}, nil
	})
}

func (s *MailService) SendNewBlogEmail() error {
	if s.editor == "" {
		s.logger.Info("no editor address configured, new blog emails disabled")
		return nil
	}

	return s.consume(common.BlogCreatedKey, common.BlogExchange, common.BlogCreatedMailQueue, func(body []byte) (*envelope, error) {
		var data blogCreated
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}

		return &envelope{
			recipient: s.editor,
			template:  templateNewBlog,
			data: struct {
				Title  string
				Slug   string
				Author string
			}{
				Title:  data.Title,
				Slug:   data.Slug,
				Author: data.Author,
			},
		}, nil
	})
}

func (s *MailService) consume(key common.BindingKey, exchange common.Exchange, queue common.Queue, decode func([]byte) (*envelope, error)) error {
	msgs, err := s.mb.Consume(key, exchange, queue)
	if err != nil {
		return fmt.Errorf("could not consume %s: %w", queue, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handle(msg, decode)

			case <-s.ctx.Done():
				s.logger.Info("stopping mail consumer due to context cancellation", slog.String("queue", string(queue)))
				return
			}
		}
	}()

	return nil
}

// handle acks every delivery: undecodable messages and exhausted retries are logged and dropped.
func (s *MailService) handle(msg amqp.Delivery, decode func([]byte) (*envelope, error)) {
	defer msg.Ack(false)

	env, err := decode(msg.Body)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	if err := s.sendWithRetry(env); err != nil {
		s.logger.Error("could not send email", slog.String("email", env.recipient), slog.String("template", env.template), slog.String("error", err.Error()))
		return
	}

	s.logger.Info("email sent", slog.String("email", env.recipient), slog.String("template", env.template))
}

// sendWithRetry uses exponential backoff with full jitter.
func (s *MailService) sendWithRetry(env *envelope) error {
	var err error

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = s.m.send(env.recipient, env.data, env.template)
		if err == nil {
			return nil
		}

		if attempt == s.maxRetries-1 {
			break
		}

		var delay time.Duration
		if s.baseDelay > 0 {
			delay = time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		}
		s.logger.Info("delaying email", slog.String("email", env.recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}

	return err
}

// Close stops the consumers and waits for in-flight messages.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
