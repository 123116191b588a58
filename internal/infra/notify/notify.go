// Package notify は利用者へのメール通知。
// 送信は非同期（失敗しても本処理は止めない）。
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"sync"

	"rewards/internal/config"
)

type Event string

const (
	EventAccountRemoved   Event = "account-removed"
	EventNewSponsorship   Event = "new-sponsorship"
	EventNewPointsBalance Event = "new-points-balance"
	EventOrderCanceled    Event = "order-canceled"
	EventOrderSummary     Event = "order-summary"
	EventPasswordReset    Event = "password-reset"
)

type Message struct {
	Event   Event
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, m Message)
	//送信中のものを待つ（終了時）
	Close()
}

// 設定に応じてSMTPかログ出力を返す
func New(cfg config.Config, logger *slog.Logger) Notifier {
	if !cfg.Mail.Enabled {
		return &LogNotifier{logger: logger}
	}
	return NewSMTPNotifier(cfg.Mail, logger)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	cfg    config.Mail
	logger *slog.Logger
	send   sendFunc
	wg     sync.WaitGroup
}

func NewSMTPNotifier(cfg config.Mail, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (n *SMTPNotifier) Notify(ctx context.Context, m Message) {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	raw := buildMIME(n.cfg.From, m)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(addr, auth, n.cfg.From, []string{m.To}, raw); err != nil {
			n.logger.Warn("mail send failed",
				slog.String("event", string(m.Event)),
				slog.String("to", m.To),
				slog.Any("error", err),
			)
		}
	}()
}

func (n *SMTPNotifier) Close() { n.wg.Wait() }

// ヘッダ値に改行を入れさせない
var crlf = strings.NewReplacer("\r", "", "\n", "")

// Subjectは非ASCII・制御文字があればRFC2047でエンコード
func buildMIME(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + crlf.Replace(from) + "\r\n")
	b.WriteString("To: " + crlf.Replace(m.To) + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// メール無効時（開発用）
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, m Message) {
	n.logger.InfoContext(ctx, "notification",
		slog.String("event", string(m.Event)),
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
	)
}

func (n *LogNotifier) Close() {}
