package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// JobEvent is published when a generation job reaches a terminal state.
type JobEvent struct {
	JobID     string `json:"job_id"`
	EventName string `json:"event_name"`
	Status    string `json:"status"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
}

// JobPublisher notifies downstream consumers about finished generation jobs.
type JobPublisher interface {
	PublishJobFinished(ctx context.Context, ev JobEvent) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher returns a publisher bound to topicARN. An empty ARN yields a
// publisher that drops every event.
func NewPublisher(awsCfg aws.Config, region, endpoint, topicARN string) JobPublisher {
	if topicARN == "" {
		return nopPublisher{}
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if region != "" {
			o.Region = region
		}
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &publisher{client: client, topicARN: topicARN}
}

func (p *publisher) PublishJobFinished(ctx context.Context, ev JobEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("certificate generation " + ev.Status),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_name": {DataType: aws.String("String"), StringValue: aws.String(ev.EventName)},
			"status":     {DataType: aws.String("String"), StringValue: aws.String(ev.Status)},
		},
	})
	return err
}

type nopPublisher struct{}

func (nopPublisher) PublishJobFinished(context.Context, JobEvent) error { return nil }
