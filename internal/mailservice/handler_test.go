package mailservice

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogcms/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, mc *MockMessageConsumer, m *MockMailer, editor string) *MailService {
	t.Helper()

	s := NewMailService(mc, m, editor, testLogger())
	s.baseDelay = 0

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func waitForSend(t *testing.T, m *MockMailer) {
	t.Helper()

	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email")
	}
}

func TestSendActivationEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.Bodies = [][]byte{[]byte(`{"name": "Alice", "email": "test@example.com", "token": "testtoken"}`)}
	mockMC.On("Consume", common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue).Return(nil)

	mockMailer := NewMockMailer(0)
	s := newTestService(t, mockMC, mockMailer, "")

	require.NoError(t, s.SendActivationEmail())
	waitForSend(t, mockMailer)

	sent := mockMailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "test@example.com", sent[0].Recipient, "expected email to be sent to the recipient")
	assert.Equal(t, templateActivation, sent[0].Template)

	mockMC.AssertExpectations(t)
}

func TestSendActivationEmail_Retries(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.Bodies = [][]byte{[]byte(`{"email": "test@example.com", "token": "testtoken"}`)}
	mockMC.On("Consume", common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue).Return(nil)

	mockMailer := NewMockMailer(3)
	s := newTestService(t, mockMC, mockMailer, "")

	require.NoError(t, s.SendActivationEmail())
	waitForSend(t, mockMailer)

	assert.Equal(t, 4, mockMailer.Attempts())
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	mockMailer := NewMockMailer(100)
	s := newTestService(t, new(MockMessageConsumer), mockMailer, "")

	err := s.sendWithRetry(&envelope{recipient: "test@example.com", template: templateActivation})
	assert.Error(t, err)
	assert.Equal(t, defaultMaxRetries, mockMailer.Attempts())
}

func TestSendActivationEmail_SkipsMalformedMessages(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.Bodies = [][]byte{
		[]byte(`not json`),
		[]byte(`{"email": "second@example.com", "token": "testtoken"}`),
	}
	mockMC.On("Consume", common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue).Return(nil)

	mockMailer := NewMockMailer(0)
	s := newTestService(t, mockMC, mockMailer, "")

	require.NoError(t, s.SendActivationEmail())
	waitForSend(t, mockMailer)

	sent := mockMailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "second@example.com", sent[0].Recipient)
}

func TestSendNewBlogEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.Bodies = [][]byte{[]byte(`{"id": "1", "title": "Hello", "slug": "hello", "author": "Alice"}`)}
	mockMC.On("Consume", common.BlogCreatedKey, common.BlogExchange, common.BlogCreatedMailQueue).Return(nil)

	mockMailer := NewMockMailer(0)
	s := newTestService(t, mockMC, mockMailer, "editor@example.com")

	require.NoError(t, s.SendNewBlogEmail())
	waitForSend(t, mockMailer)

	sent := mockMailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "editor@example.com", sent[0].Recipient)
	assert.Equal(t, templateNewBlog, sent[0].Template)
}

func TestSendNewBlogEmail_NoEditor(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	s := newTestService(t, mockMC, NewMockMailer(0), "")

	assert.NoError(t, s.SendNewBlogEmail())
	mockMC.AssertNotCalled(t, "Consume")
}

func TestConsumeError(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMC.On("Consume", common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue).Return(errors.New("channel closed"))

	s := newTestService(t, mockMC, NewMockMailer(0), "")

	assert.Error(t, s.SendActivationEmail())
}
