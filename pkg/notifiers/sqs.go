package notifiers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient defines the minimal subset of the SQS client used by sqsNotifier.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsNotifier implements the Notifier interface for AWS SQS.
type sqsNotifier struct {
	id       string
	queueURL string
	typ      string
	client   sqsClient
	log      Logger
}

// newSQSNotifier creates a new SQS notifier with the given configuration.
func newSQSNotifier(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("notifier %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSOptions)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SQS.AWSOptions)

	return &sqsNotifier{
		id:       cfg.ID,
		typ:      TypeSQS,
		queueURL: cfg.SQS.QueueURL,
		client: sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
		log: ensureLogger(log),
	}, nil
}

func (s *sqsNotifier) ID() string   { return s.id }
func (s *sqsNotifier) Type() string { return s.typ }

// Notify sends the event to the configured SQS queue.
func (s *sqsNotifier) Notify(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range evt.attributes() {
		if v == "" {
			continue
		}
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		s.log.ErrorObj("sqs notifier send failed", "notifier_sqs_error", map[string]any{
			"notifier_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs notifier delivered event", "notifier_sqs_delivery", map[string]any{
		"notifier_id": s.id,
		"event_id":    evt.ID,
	})
	return nil
}
