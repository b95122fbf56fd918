// Package publish announces finished sync reports on Google Cloud Pub/Sub.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/illmade-knight/contact-sync/app"
	"github.com/rs/zerolog"
)

// PubsubPublisher implements app.ReportPublisher. Each report becomes one
// JSON message with operation and result attributes.
type PubsubPublisher struct {
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// NewPubsubPublisher creates a publisher for topicID. Call Stop when done.
func NewPubsubPublisher(client *pubsub.Client, topicID string, logger zerolog.Logger) *PubsubPublisher {
	return &PubsubPublisher{
		publisher: client.Publisher(topicID),
		logger:    logger.With().Str("component", "publisher").Str("topic_id", topicID).Logger(),
	}
}

// Publish sends report and waits for the server acknowledgement.
func (p *PubsubPublisher) Publish(ctx context.Context, report app.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"operation": string(report.Operation),
			"result":    report.Result,
		},
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	p.logger.Debug().Str("message_id", serverID).Stringer("run_id", report.RunID).Msg("Published report")
	return nil
}

// Stop flushes pending messages.
func (p *PubsubPublisher) Stop() {
	p.publisher.Stop()
}
