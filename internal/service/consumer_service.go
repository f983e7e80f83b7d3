package service

import (
	"context"
	"encoding/json"

	"recall-be/internal/dto"
	"recall-be/internal/pkg/logger"
	"recall-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains decision-saved confirmations off the in-process
// bus. Each message is merged into the owning project's ledger (idempotent
// on the candidate id) and then broadcast to websocket subscribers.
// Confirmations for different candidates may arrive in any order; each merge
// is a single atomic step from the ledger's perspective.
type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	workspaceService IWorkspaceService
	hub              *websocket.Hub
	logger           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	workspaceService IWorkspaceService,
	hub *websocket.Hub,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		workspaceService: workspaceService,
		hub:              hub,
		logger:           log,
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
	var payload dto.DecisionSavedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal decision saved message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := cs.workspaceService.MergeDecision(&payload); err != nil {
		cs.logger.Error("consumer", "Ledger merge failed", map[string]interface{}{
			"project_id":  payload.ProjectId.String(),
			"decision_id": payload.Id,
			"error":       err.Error(),
		})
		msg.Ack()
		return
	}

	cs.hub.BroadcastToProject(payload.ProjectId, msg.Payload)
	msg.Ack()
}
