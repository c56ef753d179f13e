package realtime

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves one websocket client for its whole lifetime. Incoming
// frames are read only to notice disconnects.
func Handler(hub *Hub, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := hub.Register(context.Background(), conn)
		if err != nil {
			logger.Warn("websocket register failed", zap.Error(err))
			_ = conn.Close()
			return
		}
		logger.Info("client connected", zap.String("client_id", client.ID))

		done := make(chan struct{})
		go func() {
			defer close(done)
			client.WritePump()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
		logger.Info("client disconnected", zap.String("client_id", client.ID))
	})
}
