package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pinvent/internal/auth"
	apperrors "pinvent/internal/errors"
	"pinvent/internal/logging"
	"pinvent/internal/mail"
	"pinvent/internal/model"
	"pinvent/internal/repository"
)

const minPasswordLength = 6

// Session is a freshly issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService handles the credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, Session, error)
	Login(ctx context.Context, email, password string) (*model.User, Session, error)
	// LoginStatus reports whether token is a verifiable session.
	LoginStatus(token string) bool
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, password string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// AuthConfig carries the settings the auth flows need.
type AuthConfig struct {
	FrontendURL   string
	MailFrom      string
	ResetTokenTTL time.Duration
}

type authService struct {
	users    repository.UserRepository
	tokens   repository.ResetTokenRepository
	hasher   auth.PasswordHasher
	issuer   *auth.SessionIssuer
	mailer   mail.Dispatcher
	profiles *ProfileCache
	cfg      AuthConfig
	log      logging.Logger
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.ResetTokenRepository,
	hasher auth.PasswordHasher,
	issuer *auth.SessionIssuer,
	mailer mail.Dispatcher,
	profiles *ProfileCache,
	cfg AuthConfig,
	log logging.Logger,
) AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = auth.ResetTokenTTL
	}
	return &authService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		issuer:   issuer,
		mailer:   mailer,
		profiles: profiles,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a user and opens a session for it.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, Session, error) {
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, Session{}, apperrors.Validation("Please fill in all required fields")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, Session{}, apperrors.Validation("Password should be more than 6 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, Session{}, apperrors.EmailTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, Session{}, fmt.Errorf("check email: %w", err)
	}

	// the store enforces uniqueness again, covering concurrent registrations
	user, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		return nil, Session{}, err
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, session, nil
}

// Login verifies credentials and opens a session.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, Session{}, apperrors.Validation("Please add email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Session{}, apperrors.Authentication("User not found. Please sign up.")
	}
	if err != nil {
		return nil, Session{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, Session{}, apperrors.Authentication("Invalid email or password")
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	return user, session, nil
}

func (s *authService) LoginStatus(token string) bool {
	if token == "" {
		return false
	}
	_, err := s.issuer.Verify(token)
	return err == nil
}

// ChangePassword replaces the password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, password string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Authentication("User not found. Please sign up.")
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if oldPassword == "" || password == "" {
		return apperrors.Validation("Please provide both old and new passwords.")
	}

	ok, err := s.hasher.Compare(user.PasswordHash, oldPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return apperrors.Authentication("Old password is incorrect.")
	}

	user.SetPassword(password)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.profiles.Invalidate(ctx, user.ID)
	s.log.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// ForgotPassword replaces the user's reset token and mails the reset link.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(apperrors.ErrUserNotFound, "User does not exist.")
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	secret, err := auth.NewResetSecret(user.ID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("generate reset token: %w", err), "Email not sent. Please try again.")
	}

	now := s.now()
	token := &model.ResetToken{
		UserID:    user.ID,
		TokenHash: auth.HashResetToken(secret),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
	}
	if err := s.tokens.Replace(ctx, token); err != nil {
		return apperrors.Internal(fmt.Errorf("store reset token: %w", err), "Email not sent. Please try again.")
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.cfg.FrontendURL, secret)
	msg := mail.Message{
		Subject: "Password Reset Request",
		HTML:    resetEmailHTML(user.Name, resetURL, s.cfg.ResetTokenTTL),
		To:      user.Email,
		From:    s.cfg.MailFrom,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperrors.Internal(
			fmt.Errorf("%w: %v", apperrors.ErrMailDelivery, err),
			"Email not sent. Please try again.",
		)
	}
	return nil
}

// ResetPassword sets a new password for the owner of a live reset token and consumes the token.
func (s *authService) ResetPassword(ctx context.Context, resetToken, password string) error {
	invalid := apperrors.NotFound(apperrors.ErrInvalidResetToken, "Invalid or Expired Token.")

	token, err := s.tokens.FindValid(ctx, auth.HashResetToken(resetToken), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return fmt.Errorf("find reset token: %w", err)
	}

	if password == "" {
		return apperrors.Validation("Please add a password")
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	user.SetPassword(password)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		// the password is already changed; the token expires on its own
		s.log.Warn(ctx, "consume reset token", "user_id", user.ID, "error", err)
	}
	s.profiles.Invalidate(ctx, user.ID)
	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *authService) issue(userID uuid.UUID) (Session, error) {
	token, expires, err := s.issuer.Issue(userID)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires}, nil
}

func resetEmailHTML(name, resetURL string, ttl time.Duration) string {
	link := html.EscapeString(resetURL)
	return fmt.Sprintf(`
<h2>Hello %s</h2>
<p>Please use the URL below to reset your password.</p>
<p>This reset link is valid for %d minutes.</p>
<a href="%s" clicktracking=off>%s</a>
<p>Regards...</p>
<p>Pinvent Team</p>
`, html.EscapeString(name), int(ttl.Minutes()), link, link)
}
