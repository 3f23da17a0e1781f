// Package notify delivers digests by email through Amazon SES.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when a mailer has no sender or recipients.
var ErrNotConfigured = errors.New("notify: sender and recipients are required")

// SESService is the part of the SES client the mailer uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewSES builds an SES client for region from the default AWS credential chain.
func NewSES(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

// Mailer sends plain-text messages from one address to a fixed list.
type Mailer struct {
	client SESService
	from   string
	to     []string
	log    *zap.Logger
}

// NewMailer creates a mailer. Blank recipients are dropped.
func NewMailer(client SESService, from string, to []string, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	var recipients []string
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return &Mailer{client: client, from: strings.TrimSpace(from), to: recipients, log: log}
}

// Send emails subject and body to every recipient in one message and returns
// the SES message id.
func (m *Mailer) Send(ctx context.Context, subject, body string) (string, error) {
	if m.from == "" || len(m.to) == 0 {
		return "", ErrNotConfigured
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: m.to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}

	id := aws.ToString(out.MessageId)
	m.log.Info("email sent",
		zap.String("subject", subject),
		zap.Int("recipients", len(m.to)),
		zap.String("message_id", id))
	return id, nil
}
