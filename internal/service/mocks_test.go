package service

import (
	"context"
	"regexp"
	"sync"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"pinvent/internal/auth"
	"pinvent/internal/mail"
)

// MockDispatcher is a mock implementation of mail.Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockImageStore is a mock implementation of storage.ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, contentType, data)
	return args.String(0), args.Error(1)
}

// outbox records sent mail.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

var resetLinkPattern = regexp.MustCompile(`/resetpassword/([0-9a-f-]+)"`)

// lastResetSecret extracts the secret from the most recent reset email.
func (o *outbox) lastResetSecret() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return ""
	}
	m := resetLinkPattern.FindStringSubmatch(o.sent[len(o.sent)-1].HTML)
	if m == nil {
		return ""
	}
	return m[1]
}

func testHasher() auth.PasswordHasher {
	return &auth.BcryptHasher{Cost: bcrypt.MinCost}
}
