package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/webchess-backend/internal/model"
	"github.com/benbeisheim/webchess-backend/internal/service"
	"github.com/benbeisheim/webchess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	conn := ws.NewConn(c)
	ctx := context.Background()

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(ctx, gameID, conn.ID, conn); err != nil {
		log.Warnf("failed to register connection for game %s: %v", gameID, err)
		conn.SendError(err.Error())
		conn.Close(err.Error())
		return
	}
	log.Debugf("websocket %s joined game %s", conn.ID, gameID)

	// Start message handling loop
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("websocket %s read error: %v", conn.ID, err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			conn.SendError("malformed message")
			continue
		}

		if err := wsc.handleMessage(ctx, gameID, conn, msg); err != nil {
			log.Warnf("websocket %s: %v", conn.ID, err)
			conn.SendError(err.Error())
		}
	}

	// Clean up when connection closes
	wsc.gameService.UnregisterConnection(gameID, conn.ID)
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID string, conn model.Subscriber, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("invalid move payload: %w", err)
		}
		verdict, _, err := wsc.gameService.HandleMove(ctx, gameID, move)
		if err != nil {
			return err
		}
		// The new state reaches every subscriber through the game broadcast;
		// only the mover needs the verdict.
		reply, err := ws.NewMessage(ws.MessageTypeVerdict, verdict)
		if err != nil {
			return err
		}
		return conn.Send(reply)

	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(ctx, gameID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
