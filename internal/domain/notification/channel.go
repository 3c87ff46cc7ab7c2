package notification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL TYPE
// ══════════════════════════════════════════════════════════════════════════════

// ChannelType identifies a delivery channel.
type ChannelType string

const (
	// ChannelTypeEmail delivers over SMTP.
	ChannelTypeEmail ChannelType = "email"

	// ChannelTypeLog writes messages to the structured log. Used in
	// development and when SMTP is not configured.
	ChannelTypeLog ChannelType = "log"
)

// IsValid checks if the channel type is known.
func (ct ChannelType) IsValid() bool {
	return ct == ChannelTypeEmail || ct == ChannelTypeLog
}

// String returns the channel name.
func (ct ChannelType) String() string {
	return string(ct)
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// Message is a rendered notification addressed to one recipient.
type Message struct {
	To      string // email address
	ToName  string
	Subject string
	Body    string
	Kind    Kind
}

// ══════════════════════════════════════════════════════════════════════════════
// DELIVERY RESULT
// ══════════════════════════════════════════════════════════════════════════════

// DeliveryResult describes one delivery attempt.
type DeliveryResult struct {
	Success     bool
	Channel     ChannelType
	DeliveredAt time.Time
	Error       error
	Retryable   bool
}

// NewSuccessResult creates a successful delivery result.
func NewSuccessResult(channel ChannelType, at time.Time) DeliveryResult {
	return DeliveryResult{Success: true, Channel: channel, DeliveredAt: at.UTC()}
}

// NewFailureResult creates a failed delivery result.
func NewFailureResult(channel ChannelType, at time.Time, err error, retryable bool) DeliveryResult {
	return DeliveryResult{Channel: channel, DeliveredAt: at.UTC(), Error: err, Retryable: retryable}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDER
// ══════════════════════════════════════════════════════════════════════════════

// Sender pushes a rendered message through one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Channel() ChannelType
}
