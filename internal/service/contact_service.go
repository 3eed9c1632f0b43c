package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	apperrors "pinvent/internal/errors"
	"pinvent/internal/mail"
)

// ContactService relays contact form messages to the operator inbox.
type ContactService interface {
	Submit(ctx context.Context, replyTo, subject, message string) error
}

type contactService struct {
	mailer mail.Dispatcher
	inbox  string
	from   string
}

// NewContactService creates a contact service delivering to inbox.
func NewContactService(mailer mail.Dispatcher, inbox, from string) ContactService {
	return &contactService{mailer: mailer, inbox: inbox, from: from}
}

func (s *contactService) Submit(ctx context.Context, replyTo, subject, message string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return apperrors.Validation("Please fill in all required fields")
	}

	err := s.mailer.Send(ctx, mail.Message{
		Subject: subject,
		HTML:    "<p>" + strings.ReplaceAll(html.EscapeString(message), "\n", "<br>") + "</p>",
		To:      s.inbox,
		From:    s.from,
		ReplyTo: replyTo,
	})
	if err != nil {
		return apperrors.Internal(
			fmt.Errorf("%w: %v", apperrors.ErrMailDelivery, err),
			"Server error. Please try again later.",
		)
	}
	return nil
}
