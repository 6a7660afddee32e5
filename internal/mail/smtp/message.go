package smtp

import (
	"io"
	netmail "net/mail"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/osa911/portfolio-contact/internal/mail"
)

func writeMessage(w io.Writer, email *mail.Email, from, to *netmail.Address, messageID string, date time.Time) error {
	var h gomail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*gomail.Address{(*gomail.Address)(from)})
	h.SetAddressList("To", []*gomail.Address{(*gomail.Address)(to)})
	if email.ReplyTo != "" {
		replyTo, err := netmail.ParseAddress(email.ReplyTo)
		if err != nil {
			return err
		}
		h.SetAddressList("Reply-To", []*gomail.Address{(*gomail.Address)(replyTo)})
	}
	h.SetSubject(email.Subject)
	h.SetMessageID(messageID)

	mw, err := gomail.CreateWriter(w, h)
	if err != nil {
		return err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	if email.Text != "" {
		if err := writeInlinePart(tw, "text/plain", email.Text); err != nil {
			return err
		}
	}
	if email.HTML != "" {
		if err := writeInlinePart(tw, "text/html", email.HTML); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}

	return mw.Close()
}

func writeInlinePart(tw *gomail.InlineWriter, contentType, body string) error {
	var h gomail.InlineHeader
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	pw, err := tw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, body); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
