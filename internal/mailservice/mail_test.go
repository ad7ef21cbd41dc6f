package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	subject := bytes.NewBufferString("Test Subject")
	plainBody := bytes.NewBufferString("Test Plain Body")
	htmlBody := bytes.NewBufferString("Test HTML Body")

	testCases := []struct {
		name      string
		parseErr  error
		dialErr   error
		expectErr bool
	}{
		{name: "success"},
		{name: "template error", parseErr: errors.New("no such template"), expectErr: true},
		{name: "dial error", dialErr: errors.New("connection refused"), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRenderer := new(MockRenderer)
			mockDialer := new(MockDialer)

			mailer := &Mail{
				dialer:    mockDialer,
				templates: mockRenderer,
				sender:    "sender@example.com",
			}

			mockRenderer.On("Render", "template.html", mock.Anything).Return(subject, plainBody, htmlBody, tc.parseErr)
			if tc.parseErr == nil {
				mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).Return(tc.dialErr)
			}

			err := mailer.send("test@example.com", nil, "template.html")
			assert.Equal(t, tc.expectErr, err != nil)

			mockRenderer.AssertExpectations(t)
			mockDialer.AssertExpectations(t)
		})
	}
}
