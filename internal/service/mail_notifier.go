package service

import (
	"context"

	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/pkg/mailer"
	"blog-autowriter-be/pkg/events"
)

// MailNotifier turns domain events into emails. Handle can be registered on
// the NATS subscriber or on an in-process events.Bus.
type MailNotifier struct {
	mailer mailer.IEmailService
	logger logger.ILogger
}

func NewMailNotifier(mailer mailer.IEmailService, logger logger.ILogger) *MailNotifier {
	return &MailNotifier{mailer: mailer, logger: logger}
}

// Subscriptions lists the event types Handle understands.
func (n *MailNotifier) Subscriptions() []string {
	return []string{events.TypeMessageReplied, events.TypeUserRegistered, events.TypeEmailVerificationRequested}
}

func (n *MailNotifier) Handle(ctx context.Context, event events.Event) error {
	data := events.BaseEvent{Type: event.EventType(), Data: event.Payload(), OccurredAt: event.Timestamp()}

	switch event.EventType() {
	case events.TypeMessageReplied:
		email := data.String("email")
		if email == "" {
			n.logger.Warn("MAILER", "Reply event without recipient", map[string]interface{}{"message_id": data.String("message_id")})
			return nil
		}
		if err := n.mailer.SendReplyNotification(email, data.String("subject"), data.String("reply")); err != nil {
			n.logger.Error("MAILER", "Failed to send reply notification", map[string]interface{}{
				"message_id": data.String("message_id"),
				"error":      err.Error(),
			})
			return err
		}
		n.logger.Info("MAILER", "Reply notification sent", map[string]interface{}{"message_id": data.String("message_id")})

	case events.TypeUserRegistered:
		email := data.String("email")
		if email == "" {
			return nil
		}
		if err := n.mailer.SendWelcome(email, data.String("display_name"), data.Int("credits")); err != nil {
			n.logger.Error("MAILER", "Failed to send welcome mail", map[string]interface{}{
				"user_id": data.String("user_id"),
				"error":   err.Error(),
			})
			return err
		}
		n.logger.Info("MAILER", "Welcome mail sent", map[string]interface{}{"user_id": data.String("user_id")})

	case events.TypeEmailVerificationRequested:
		if err := n.mailer.SendEmailVerification(data.String("email"), data.String("display_name"), data.String("token")); err != nil {
			n.logger.Error("MAILER", "Failed to send verification mail", map[string]interface{}{
				"user_id": data.String("user_id"),
				"error":   err.Error(),
			})
			return err
		}
		n.logger.Info("MAILER", "Verification mail sent", map[string]interface{}{"user_id": data.String("user_id")})
	}
	return nil
}
