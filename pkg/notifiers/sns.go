package notifiers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient defines the minimal subset of the SNS client used by snsNotifier.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsNotifier implements the Notifier interface for AWS SNS.
type snsNotifier struct {
	id       string
	topicARN string
	typ      string
	client   snsClient
	log      Logger
}

// newSNSNotifier creates a new SNS notifier with the given configuration.
func newSNSNotifier(ctx context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("notifier %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSOptions)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SNS.AWSOptions)

	return &snsNotifier{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
		log: ensureLogger(log),
	}, nil
}

func (s *snsNotifier) ID() string   { return s.id }
func (s *snsNotifier) Type() string { return s.typ }

// Notify publishes the event to the configured SNS topic.
func (s *snsNotifier) Notify(ctx context.Context, evt Event) error {
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

	input := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(payload)),
		MessageAttributes: attrs,
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns notifier publish failed", "notifier_sns_error", map[string]any{
			"notifier_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns notifier delivered event", "notifier_sns_delivery", map[string]any{
		"notifier_id": s.id,
		"event_id":    evt.ID,
	})
	return nil
}
