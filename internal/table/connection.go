package table

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SendState sends the current table state to a single client.
func (t *Table) SendState(ctx context.Context, c *client.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendTo(ctx, c, proto.NewStateMessage(t.ID, t.session.Snapshot()))
}

// broadcast requires t.mu to be held.
func (t *Table) broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "table.Broadcast", trace.WithAttributes(
		attribute.String("table.id", t.ID),
		attribute.String("message.type", message.Type),
		attribute.Int("client.count", len(t.clients)),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for _, c := range t.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing message to client", "client.id", c.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to client")
		}
	}
}

func (t *Table) sendTo(ctx context.Context, c *client.Client, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to client", "client.id", c.ID, "table.id", t.ID, "error", err)
	}
}

// ReadPump pumps messages from the client's connection to the table's run loop.
// When the connection fails the client is handed to the unregister channel.
func (t *Table) ReadPump(c *client.Client) {
	ctx, span := tracer.Start(context.Background(), "table.ReadPump", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("table.id", t.ID),
	))
	defer span.End()

	defer func() {
		c.Conn.Close()
		slog.InfoContext(ctx, "Client disconnected.", "client.id", c.ID, "table.id", t.ID)
		if t.unregisterClient != nil {
			select {
			case t.unregisterClient <- c:
			case <-t.done:
			}
		}
	}()

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			slog.WarnContext(ctx, "Client connection error", "client.id", c.ID, "table.id", t.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Client connection error")
			return
		}

		select {
		case t.incoming <- &types.ClientMessage{Client: c, Message: msg}:
		case <-t.done:
			return
		}
	}
}
