package service

import (
	"context"
	"encoding/json"

	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"
	"github.com/rvemuri2/helix-backend/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains sequence update events off the in-process bus and
// pushes them to the owning user's websocket connections.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.SequenceUpdatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal sequence update", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.hub.SendSequenceUpdate(event.UserId, event)
	msg.Ack()
}
