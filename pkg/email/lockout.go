package email

import (
	"context"
	"fmt"
	"html"

	"github.com/dmitrymomot/authcore/pkg/twofactor"
)

// LockoutNotifier implements twofactor.ResetInitiator by emailing the locked
// account a link into the application's password reset flow. The reset flow
// itself (token minting, form handling) belongs to the caller; the locked
// state only clears once that flow completes.
type LockoutNotifier struct {
	sender   EmailSender
	resetURL string
}

// NewLockoutNotifier builds a notifier pointing users at resetURL.
func NewLockoutNotifier(sender EmailSender, resetURL string) (*LockoutNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if resetURL == "" {
		return nil, fmt.Errorf("%w: resetURL is required", ErrInvalidConfig)
	}
	return &LockoutNotifier{sender: sender, resetURL: resetURL}, nil
}

func (n *LockoutNotifier) InitiatePasswordReset(ctx context.Context, user *twofactor.User) error {
	body := fmt.Sprintf(
		`<p>Your account was locked after repeated failed sign-in attempts.</p>
<p>To regain access, reset your password: <a href="%s">%s</a></p>
<p>If this wasn't you, resetting your password will also sign out any other sessions.</p>`,
		html.EscapeString(n.resetURL), html.EscapeString(n.resetURL),
	)

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   user.Email,
		Subject:  "Your account has been locked",
		BodyHTML: body,
		Tag:      "account-lockout",
	})
}
