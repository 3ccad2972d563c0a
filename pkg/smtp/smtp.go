package smtp

import (
	"errors"
	"fmt"
	smtpPkg "net/smtp"
	"os"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("smtp mail not configured")

type ItfSmtp interface {
	SendAlert(userEmail string, alert Alert) error
}

type Alert struct {
	Username   string
	VideoName  string
	Event      string
	Risk       string
	Precaution string
	DetectedAt time.Time
}

type smtp struct {
	auth smtpPkg.Auth
	mail string
	addr string
	send func(addr string, a smtpPkg.Auth, from string, to []string, msg []byte) error
}

func New() (ItfSmtp, error) {
	mail := os.Getenv("SMTP_MAIL")
	if mail == "" {
		return nil, ErrNotConfigured
	}
	password := os.Getenv("SMTP_PASSWORD")
	auth := smtpPkg.PlainAuth("", mail, password, "smtp.gmail.com")

	return &smtp{auth: auth, mail: mail, addr: "smtp.gmail.com:587", send: smtpPkg.SendMail}, nil
}

func (s *smtp) SendAlert(userEmail string, alert Alert) error {
	to := []string{userEmail}
	return s.send(s.addr, s.auth, s.mail, to, BuildAlertMessage(s.mail, userEmail, alert))
}

func BuildAlertMessage(from, to string, alert Alert) []byte {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\r\n\r\n", alert.Username)
	fmt.Fprintf(&body, "FallWatch detected an event in %q at %s.\r\n\r\n", alert.VideoName, alert.DetectedAt.Format(time.RFC1123))
	fmt.Fprintf(&body, "Event: %s\r\nRisk: %s\r\nPrecaution: %s\r\n", alert.Event, alert.Risk, alert.Precaution)

	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: FallWatch alert\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, body.String()))
}
