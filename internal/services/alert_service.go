package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/loginguard/internal/models"
	pkglogger "github.com/BradenHooton/loginguard/pkg/logger"
)

// AWSSESAlertService sends lockout alert emails to a security address using
// AWS SES. It implements LockoutNotifier.
type AWSSESAlertService struct {
	sesClient   *ses.Client
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewAWSSESAlertService creates a new AWS SES alert service
func NewAWSSESAlertService(region, fromAddress, toAddress string, logger *slog.Logger) (*AWSSESAlertService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// NotifyLockout emails the security address about a lockout transition. The
// account identifier is masked in the message body.
func (s *AWSSESAlertService) NotifyLockout(ctx context.Context, identity models.Identity, lockedUntil time.Time) error {
	account := identity.Account
	if account == "" {
		account = "(none)"
	} else {
		account = pkglogger.SanitizedEmail(account)
	}

	textBody := fmt.Sprintf(
		"A login identity was locked out after repeated failed attempts.\n\n"+
			"Origin:       %s\n"+
			"Account:      %s\n"+
			"Locked until: %s\n",
		identity.Origin,
		account,
		lockedUntil.UTC().Format(time.RFC3339),
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Login lockout triggered"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send lockout alert: %w", err)
	}

	s.logger.Info("lockout alert sent", slog.String("origin", identity.Origin))
	return nil
}
