package client

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// PushClient submits a batch of push messages. Delivery is best-effort; the
// per-token receipts are not inspected beyond the failure count.
type PushClient interface {
	SendBatch(ctx context.Context, messages []*messaging.Message) (int, error)
}

type fcmPushClient struct {
	messagingClient *messaging.Client
}

func newFCMPushClient(messagingClient *messaging.Client) PushClient {
	return &fcmPushClient{messagingClient: messagingClient}
}

func (c *fcmPushClient) SendBatch(ctx context.Context, messages []*messaging.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	response, err := c.messagingClient.SendEach(ctx, messages)
	if err != nil {
		return 0, err
	}

	return response.FailureCount, nil
}
