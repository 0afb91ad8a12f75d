// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-service/internal/transport"
	"print-service/internal/utils"
)

// WebSocketHandler streams printer state transitions to browser
// clients. The POS front end keeps one connection open and flips its
// printer indicator on every message.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	printer     *transport.Service
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler and registers
// itself as the transport state listener.
func NewWebSocketHandler(printer *transport.Service, logger *zap.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Localhost service on a trusted POS terminal
			return true
		},
	}

	handler := &WebSocketHandler{
		upgrader:    upgrader,
		connections: NewConnectionManager(),
		printer:     printer,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}

	printer.SetStateListener(handler.BroadcastStatus)

	return handler
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.HandleStatusConnection)
}

// HandleStatusConnection upgrades the request and starts the client
// pumps. The current status is pushed immediately so a client never
// waits for the next transition to learn the printer state.
func (h *WebSocketHandler) HandleStatusConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Status WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendStatus(client, h.printer.Status())

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// handleClientRead drains the client connection. Clients only ever
// send pings; anything else is ignored.
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
	}()

	client.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			continue
		}

		if message.Type == "ping" {
			h.sendMessage(client, &WebSocketMessage{
				Type:      "pong",
				Timestamp: time.Now(),
			})
		}
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastStatus fans a state transition out to every client. Runs on
// the transport goroutine, so it must never block.
func (h *WebSocketHandler) BroadcastStatus(status transport.StatusInfo) {
	message := &WebSocketMessage{
		Type:      "printer_status",
		Data:      status,
		Timestamp: time.Now(),
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	for _, client := range h.connections.Clients() {
		select {
		case client.Send <- messageBytes:
		default:
			h.logger.Warn("Client send channel full, dropping status",
				zap.String("client_id", client.ID),
			)
		}
	}
}

// sendStatus sends one status snapshot to a single client
func (h *WebSocketHandler) sendStatus(client *Client, status transport.StatusInfo) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      "printer_status",
		Data:      status,
		Timestamp: time.Now(),
	})
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// ClientCount returns the number of connected status clients
func (h *WebSocketHandler) ClientCount() int {
	return h.connections.Count()
}
