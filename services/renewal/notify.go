package renewal

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/egyptiangio/newspaparr/lib/timezone"
	"github.com/egyptiangio/newspaparr/services/renewal/classify"
	"github.com/egyptiangio/newspaparr/services/renewal/db"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// Notifier emails the operator when a renewal fails. A nil Notifier
// is valid and does nothing, covering deployments without SMTP.
type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) *Notifier {
	if config.Host == "" {
		return nil
	}
	return &Notifier{config: config}
}

func (n *Notifier) NotifyFailure(ctx context.Context, account db.Account, outcome classify.Outcome) {
	if n == nil {
		return
	}

	e := email.NewEmail()
	e.From = n.config.From
	e.To = n.config.To
	e.Subject = fmt.Sprintf("newspaparr: renewal failed for %s", account.Name)
	e.Text = []byte(fmt.Sprintf(
		"Renewal for %s (%s/%s) failed at %s.\n\nReason: %s\nDetail: %s\n",
		account.Name,
		account.LibraryAdapter,
		account.NewspaperAdapter,
		timezone.Format(timezone.Now()),
		outcome.Reason,
		outcome.Message,
	))

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}
	if err := e.Send(addr, auth); err != nil {
		slog.ErrorContext(ctx, "failed to send failure notification",
			"account", account.Name, "err", err)
		return
	}
	slog.InfoContext(ctx, "sent failure notification", "account", account.Name)
}
