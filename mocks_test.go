package auth_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/duelshop/go-auth"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// TestIdentity is a plain value implementation of auth.Identity
type TestIdentity struct {
	id    string
	login string
	email string
	role  string
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Username() string { return t.login }
func (t TestIdentity) Email() string    { return t.email }
func (t TestIdentity) Role() string     { return t.role }

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByLogin(ctx context.Context, login string) (*auth.User, error) {
	args := m.Called(ctx, login)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

type sentMessage struct {
	To      string
	Subject string
	Content string
}

// captureNotifier records rendered and sent notifications and signals
// deliveries on a channel so async sends can be awaited.
type captureNotifier struct {
	mu        sync.Mutex
	sent      []sentMessage
	delivered chan sentMessage
	renderErr error
	sendErr   error
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		delivered: make(chan sentMessage, 8),
	}
}

func (c *captureNotifier) Render(kind auth.NotificationKind, params auth.TemplateParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.renderErr != nil {
		return "", c.renderErr
	}
	return fmt.Sprintf("%s|%s|%s", kind, params.Username, params.Link), nil
}

func (c *captureNotifier) Send(ctx context.Context, to, subject, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	msg := sentMessage{To: to, Subject: subject, Content: content}
	c.sent = append(c.sent, msg)
	c.delivered <- msg
	return nil
}

func (c *captureNotifier) awaitDelivery(timeout time.Duration) (sentMessage, bool) {
	select {
	case msg := <-c.delivered:
		return msg, true
	case <-time.After(timeout):
		return sentMessage{}, false
	}
}

// fakeClock is a settable auth.Clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey      string
	issuer          string
	tokenExpiration int
	verificationTTL time.Duration
	resetTTL        time.Duration
	frontendURL     string
	backendURL      string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		issuer:          "auth-api",
		tokenExpiration: 2,
		verificationTTL: 24 * time.Hour,
		resetTTL:        time.Hour,
		frontendURL:     "https://app.example.com",
		backendURL:      "https://api.example.com",
	}
}

func (c *testConfig) GetSigningKey() string                  { return c.signingKey }
func (c *testConfig) GetIssuer() string                      { return c.issuer }
func (c *testConfig) GetTokenExpiration() int                { return c.tokenExpiration }
func (c *testConfig) GetVerificationTokenTTL() time.Duration { return c.verificationTTL }
func (c *testConfig) GetResetTokenTTL() time.Duration        { return c.resetTTL }
func (c *testConfig) GetFrontendURL() string                 { return c.frontendURL }
func (c *testConfig) GetBackendURL() string                  { return c.backendURL }
