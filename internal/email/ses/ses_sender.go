package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"crmcore/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendDocumentEmail(ctx context.Context, msg port.DocumentEmail) error {
	subject := documentSubject(msg)
	htmlBody := BuildDocumentHTML(msg, s.fromName)
	textBody := BuildDocumentText(msg, s.fromName)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{msg.ToEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail %s: %w", msg.DocumentCode, err)
	}
	return nil
}

func documentSubject(msg port.DocumentEmail) string {
	return fmt.Sprintf("Your %s %s", strings.ToLower(msg.DocumentType), msg.DocumentCode)
}

func greetingName(msg port.DocumentEmail) string {
	if msg.ToName == "" {
		return "there"
	}
	return msg.ToName
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// BuildDocumentText renders the plain-text body of a document email.
func BuildDocumentText(msg port.DocumentEmail, sender string) string {
	return fmt.Sprintf("Hi %s,\n\nPlease find your %s %s at the link below:\n%s\n\nThe link expires in 7 days.\n\n%s",
		greetingName(msg), strings.ToLower(msg.DocumentType), msg.DocumentCode, msg.DownloadURL, sender)
}

// BuildDocumentHTML renders the HTML body of a document email.
func BuildDocumentHTML(msg port.DocumentEmail, sender string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s %s</h2>
  <p>Hi %s,</p>
  <p>Your %s is ready. Click the button below to view or download it:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View %s</a>
  </p>
  <p style="color: #999; font-size: 12px;">The link expires in 7 days.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		html.EscapeString(titleCase(msg.DocumentType)), html.EscapeString(msg.DocumentCode),
		html.EscapeString(greetingName(msg)), html.EscapeString(strings.ToLower(msg.DocumentType)),
		html.EscapeString(msg.DownloadURL), html.EscapeString(msg.DocumentCode),
		html.EscapeString(sender))
}
