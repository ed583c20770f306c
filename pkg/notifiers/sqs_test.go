package notifiers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSNotifierSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	n := &sqsNotifier{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	err := n.Notify(context.Background(), Event{ID: "evt-1", Type: EventSessionUnauthorized, Source: "hubctl"})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["event_type"]
	if !ok || aws.ToString(attr.StringValue) != EventSessionUnauthorized {
		t.Fatalf("event_type attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"id":"evt-1"`) {
		t.Fatalf("MessageBody missing id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSNotifierSendError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	n := &sqsNotifier{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	if err := n.Notify(context.Background(), Event{ID: "evt-1"}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}

func TestNewSQSNotifierWithStaticCredentials(t *testing.T) {
	n, err := newSQSNotifier(context.Background(), NotifierConfig{
		ID:   "queue",
		Type: TypeSQS,
		SQS: &SQSNotifierConfig{
			QueueURL: "http://localhost:4566/000000000000/hub",
			AWSOptions: AWSOptions{
				Region:          "ap-south-1",
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSNotifier: %v", err)
	}
	if n.Type() != TypeSQS || n.ID() != "queue" {
		t.Fatalf("unexpected notifier %s/%s", n.Type(), n.ID())
	}
}
