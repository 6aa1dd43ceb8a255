package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/google/uuid"

	"studioflow-api/domain"
)

// Feed publishes recorded activity to a queue consumed by collaboration-feed
// workers. Publication is best-effort: the activity record itself is already
// durable in the table by the time Publish runs.
type Feed struct {
	queue *azqueue.QueueClient
}

// NewFeed creates a Feed from the given connection string and queue name.
func NewFeed(connStr, queueName string) (*Feed, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	queue, err := azqueue.NewQueueClientFromConnectionString(connStr, queueName, &opts)
	if err != nil {
		return nil, err
	}
	return &Feed{queue: queue}, nil
}

type feedMessage struct {
	MessageID string          `json:"messageId"`
	Activity  domain.Activity `json:"activity"`
}

// Publish enqueues the activity for downstream consumers.
func (f *Feed) Publish(ctx context.Context, act domain.Activity) error {
	msg := feedMessage{MessageID: uuid.NewString(), Activity: act}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = f.queue.EnqueueMessage(ctx, string(data), nil)
	return err
}
