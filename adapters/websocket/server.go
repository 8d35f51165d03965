package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/usecase"
	"github.com/dialogcast/dialogcast/utils/log"
)

// Server feeds pipeline events from the message broker to connected clients.
type Server struct {
	upgrader websocket.Upgrader
	broker   domain.MessageBroker
	hub      *Hub
}

func NewServer(broker domain.MessageBroker) *Server {
	hub := NewHub()

	server := &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		broker:   broker,
		hub:      hub,
	}

	go server.startEventListener()

	return server
}

func (s *Server) RunWebsocketHub() {
	s.hub.Run()
}

func (s *Server) GetHub() *Hub {
	return s.hub
}

// startEventListener relays pipeline events from the broker to every
// connected WebSocket client.
func (s *Server) startEventListener() {
	ctx := context.Background()

	messageChan, err := s.broker.Subscribe(ctx, usecase.PipelineEventsTopic, "")
	if err != nil {
		log.WithCtx(ctx).Error("subscribing to pipeline events", zap.Error(err))
		return
	}

	log.WithCtx(ctx).Info("WebSocket server listening to pipeline events")

	for {
		select {
		case msg, ok := <-messageChan:
			if !ok {
				log.WithCtx(ctx).Info("pipeline event feed closed")
				return
			}
			// Payloads are already JSON-encoded PipelineEvents.
			s.hub.Broadcast(msg.Payload)
			log.WithCtx(ctx).Debug("broadcasted pipeline event",
				zap.String("kind", msg.RoutingKey))

		case <-ctx.Done():
			return
		}
	}
}
