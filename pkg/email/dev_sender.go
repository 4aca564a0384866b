package email

import (
	"context"
	"io"
	"log/slog"
)

// DevSender implements EmailSender for local development. Instead of going
// through an email service it writes each message to the logger, so
// environments without Postmark tokens still have a sender to wire in and
// the outbound mail stays visible in the log stream.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development email sender that logs messages. A nil
// logger silently discards them.
func NewDevSender(log *slog.Logger) EmailSender {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DevSender{log: log}
}

// SendEmail validates the parameters like the real sender would, then logs
// the message instead of delivering it. The body goes to a separate debug
// record to keep info-level output scannable.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "email captured by dev sender",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	d.log.DebugContext(ctx, "dev sender email body",
		slog.String("body_html", params.BodyHTML),
	)

	return nil
}
