package contact

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownTarget = errors.New("recipient or listing does not exist")

// Inquiry is a message from one user to the owner of a listing.
type Inquiry struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   int64     `json:"toUserId"`
	ListingID  *int64    `json:"listingId,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type InquiryRequest struct {
	ToUserID  int64  `json:"toUserId" binding:"required,gt=0"`
	ListingID *int64 `json:"listingId" binding:"omitempty,gt=0"`
	Message   string `json:"message" binding:"required,max=5000"`
}

func (r InquiryRequest) Inquiry(fromUserID int64) Inquiry {
	return Inquiry{
		FromUserID: fromUserID,
		ToUserID:   r.ToUserID,
		ListingID:  r.ListingID,
		Message:    strings.TrimSpace(r.Message),
	}
}

// Message is the public contact form, relayed to the site inbox.
type Message struct {
	Name    string `json:"name" binding:"required,max=120"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=5000"`
}
