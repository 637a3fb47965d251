package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier only logs; it is used when no SMTP host is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendContactMessage(ctx context.Context, in ContactMessage) error {
	n.log.InfoContext(ctx, "notification.contact_message",
		"from_email", in.Email,
		"from_name", in.Name,
		"length", len(in.Message),
	)
	return nil
}

func (n *LogNotifier) SendInquiry(ctx context.Context, in InquiryNotice) error {
	attrs := []any{
		"to_email", in.ToEmail,
		"from_email", in.FromEmail,
		"length", len(in.Message),
	}
	if in.ListingID != nil {
		attrs = append(attrs, "listing_id", *in.ListingID)
	}
	n.log.InfoContext(ctx, "notification.inquiry", attrs...)
	return nil
}
