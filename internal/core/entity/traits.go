package entity

import (
	"context"
	"time"

	"imprint/internal/core/apperror"
)

// ChannelAware is a trait for documents imported from a sales channel.
// Used for composition in models like SalesBatch, ReturnsBatch, etc.
type ChannelAware struct {
	// Channel is the reporting sales channel (retailer, aggregator)
	Channel string `db:"channel" json:"channel"`

	// ChannelReference is the channel's own report identifier
	ChannelReference string `db:"channel_reference" json:"channelReference,omitempty"`

	// ChannelReportDate is the reporting date stamped by the channel
	ChannelReportDate *time.Time `db:"channel_report_date" json:"channelReportDate,omitempty"`
}

// ValidateChannel ensures a channel is set.
func (c *ChannelAware) ValidateChannel(ctx context.Context) error {
	if c.Channel == "" {
		return apperror.NewValidation("channel is required").
			WithDetail("field", "channel")
	}
	return nil
}

// GetChannel returns the channel name (useful for interfaces).
func (c *ChannelAware) GetChannel() string {
	return c.Channel
}

// IChannelAware is an interface for any document imported from a channel.
type IChannelAware interface {
	GetChannel() string
	ValidateChannel(ctx context.Context) error
}
