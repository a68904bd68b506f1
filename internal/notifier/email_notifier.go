package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sirupsen/logrus"

	config "github.com/syberke/TechStore/configs"
)

// EmailNotifier sends transactional mail through AWS SES.
type EmailNotifier struct {
	cfg    config.EmailConfig
	client *ses.Client
}

func NewEmailNotifier(ctx context.Context, cfg config.EmailConfig) (*EmailNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &EmailNotifier{cfg: cfg, client: ses.NewFromConfig(awsCfg)}, nil
}

func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, recipientEmail string, customerName string, orderID uint, totalAmount int64) error {
	if n.cfg.SenderEmail == "" {
		return fmt.Errorf("sender email address is not configured")
	}
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order #%d Confirmation - Thank You for Your Purchase!", orderID)

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! Your order #%d has been successfully placed.</p>
            <p><strong>Order Details:</strong></p>
            <ul>
                <li>Order ID: %d</li>
                <li>Total Amount: Rp %d</li>
            </ul>
            <p>Complete your payment to have your order shipped.</p>
            <p>Best regards,</p>
            <p>TechStore</p>
        </body>
        </html>`, customerName, orderID, orderID, totalAmount)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Your order #%d has been successfully placed.\n\n"+
			"Order Details:\nOrder ID: %d\nTotal Amount: Rp %d\n\n"+
			"Complete your payment to have your order shipped.\n\nBest regards,\nTechStore",
		customerName, orderID, orderID, totalAmount)

	if err := n.sendTo(ctx, recipientEmail, subject, bodyHTML, bodyText); err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id":  orderID,
			"recipient": recipientEmail,
		}).WithError(err).Error("failed to send order confirmation email")
		return err
	}

	logrus.WithField("order_id", orderID).Info("order confirmation email sent")
	return nil
}

// SendContactMessage relays a contact-form submission to the support address.
func (n *EmailNotifier) SendContactMessage(ctx context.Context, name, email, subject, message string) error {
	if n.cfg.SenderEmail == "" || n.cfg.SupportEmail == "" {
		return fmt.Errorf("contact email addresses are not configured")
	}

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <h2>New Contact Form Submission</h2>
            <p><strong>From:</strong> %s</p>
            <p><strong>Email:</strong> %s</p>
            <p><strong>Subject:</strong> %s</p>
            <h3>Message:</h3>
            <p>%s</p>
        </body>
        </html>`, name, email, subject, strings.ReplaceAll(message, "\n", "<br>"))

	bodyText := fmt.Sprintf(
		"New contact form submission\n\nFrom: %s\nEmail: %s\nSubject: %s\n\nMessage:\n%s",
		name, email, subject, message)

	return n.sendTo(ctx, n.cfg.SupportEmail, fmt.Sprintf("Contact Form: %s", subject), bodyHTML, bodyText)
}

func (n *EmailNotifier) sendTo(ctx context.Context, recipient, subject, bodyHTML, bodyText string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.cfg.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
