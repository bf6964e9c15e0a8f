package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/pkg/proto"

	"github.com/gorilla/websocket"
)

// rejectClient tells a client why it could not join and closes its connection.
func (h *Hub) rejectClient(ctx context.Context, c *client.Client, tableID, reason string) {
	data, err := json.Marshal(proto.NewErrorMessage(tableID, reason))
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
	} else if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "Error sending rejection to client", "client.id", c.ID, "error", err)
	}
	if err := c.Conn.Close(); err != nil {
		slog.WarnContext(ctx, "Error closing rejected connection", "client.id", c.ID, "error", err)
	}
}
