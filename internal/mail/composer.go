package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/contact.html"))
	textTemplate = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/contact.txt"))
)

// Submission is a validated contact form
type Submission struct {
	Name    string
	Email   string
	Message string
}

// ComposerConfig holds the fixed addresses of every composed email
type ComposerConfig struct {
	To   string
	From string
}

// Composer renders submissions into emails
type Composer struct {
	config ComposerConfig
	now    func() time.Time
}

// NewComposer creates a composer using the wall clock for the sent-at line
func NewComposer(cfg ComposerConfig) *Composer {
	return &Composer{config: cfg, now: time.Now}
}

// WithClock replaces the time source; tests pin it.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

type templateData struct {
	Name        string
	Email       string
	Message     string
	MessageHTML htmltemplate.HTML
	SentAt      string
}

// Compose builds the email for sub. Output depends only on sub, the
// configured addresses and the clock.
func (c *Composer) Compose(sub Submission) (*Email, error) {
	data := templateData{
		Name:        sub.Name,
		Email:       sub.Email,
		Message:     sub.Message,
		MessageHTML: messageHTML(sub.Message),
		SentAt:      c.now().UTC().Format(time.RFC1123),
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}

	return &Email{
		To:      c.config.To,
		From:    c.config.From,
		ReplyTo: sub.Email,
		Subject: Subject(sub.Name),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Subject returns the subject line for a sender. Line breaks in the name are
// flattened so it stays a single header line.
func Subject(name string) string {
	return "New contact form message from " + headerBreaks.Replace(name)
}

// messageHTML escapes the message and turns its line breaks into <br>.
func messageHTML(message string) htmltemplate.HTML {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		lines[i] = htmltemplate.HTMLEscapeString(line)
	}
	return htmltemplate.HTML(strings.Join(lines, "<br>"))
}
