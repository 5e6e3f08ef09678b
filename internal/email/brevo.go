package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client sends transactional email through the Brevo API.
type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(apiKey, fromEmail, fromName string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type brevoSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type brevoRecipient struct {
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoSender      `json:"sender"`
	To          []brevoRecipient `json:"to"`
	Subject     string           `json:"subject"`
	HTMLContent string           `json:"htmlContent"`
	TextContent string           `json:"textContent"`
}

// SendMagicLink sends the login link email. The link embeds the raw
// single-use token and stays valid for 15 minutes.
func (c *Client) SendMagicLink(toEmail, link string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing API key")
	}

	textBody := fmt.Sprintf(
		"Bonjour,\n\nCliquez sur le lien ci-dessous pour vous connecter à votre espace CRM :\n\n%s\n\nCe lien est valable pendant 15 minutes et ne peut être utilisé qu'une seule fois.\n\nSi vous n'êtes pas à l'origine de cette demande, vous pouvez ignorer cet email.",
		link,
	)
	htmlBody := fmt.Sprintf(
		`<p>Bonjour,</p><p>Cliquez sur le lien ci-dessous pour vous connecter à votre espace CRM :</p><p><a href="%s">Se connecter</a></p><p>Ce lien est valable pendant 15 minutes et ne peut être utilisé qu'une seule fois.</p><p>Si vous n'êtes pas à l'origine de cette demande, vous pouvez ignorer cet email.</p>`,
		link,
	)

	payload := brevoEmail{
		Sender:      brevoSender{Name: c.fromName, Email: c.fromEmail},
		To:          []brevoRecipient{{Email: toEmail}},
		Subject:     "Votre lien de connexion CRM",
		HTMLContent: htmlBody,
		TextContent: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
