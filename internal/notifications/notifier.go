package notifications

import "context"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// InquiryNotice tells a listing owner that another user wrote to them.
type InquiryNotice struct {
	ToEmail   string
	ToName    string
	FromName  string
	FromEmail string
	ListingID *int64
	Message   string
}

type Notifier interface {
	SendContactMessage(ctx context.Context, in ContactMessage) error
	SendInquiry(ctx context.Context, in InquiryNotice) error
}
