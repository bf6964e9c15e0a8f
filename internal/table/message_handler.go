package table

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/session"
	"ctchen222/Connect-Four/internal/validator"
	"ctchen222/Connect-Four/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from a client. It acts as a dispatcher.
func (t *Table) HandleMessage(c *client.Client, rawMessage []byte) {
	ctx := context.Background()
	ctx, span := tracer.Start(ctx, "table.HandleMessage", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("table.id", t.ID),
	))
	defer span.End()

	t.mu.Lock()
	defer t.mu.Unlock()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		t.sendTo(ctx, c, proto.NewErrorMessage(t.ID, "malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		t.sendTo(ctx, c, proto.NewErrorMessage(t.ID, "invalid message"))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeDrop:
		t.handleDrop(ctx, c, session.DropCommand{Column: *message.Column})
	case proto.TypeNewRound:
		t.handleNewRound(ctx, c)
	case proto.TypeState:
		t.sendTo(ctx, c, proto.NewStateMessage(t.ID, t.session.Snapshot()))
	}
}

// handleDrop executes a column click.
func (t *Table) handleDrop(ctx context.Context, c *client.Client, cmd session.DropCommand) {
	ctx, span := tracer.Start(ctx, "table.handleDrop", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("table.id", t.ID),
		attribute.Int("move.column", cmd.Column),
	))
	defer span.End()

	outcome, err := cmd.Execute(t.session)
	if err != nil {
		slog.WarnContext(ctx, "couldn't drop token", "table.id", t.ID, "move.column", cmd.Column, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid drop")
		t.sendTo(ctx, c, proto.NewErrorMessage(t.ID, err.Error()))
		return
	}
	span.SetAttributes(
		attribute.Bool("move.valid", true),
		attribute.Int("move.row", outcome.Row),
		attribute.String("move.token", outcome.Token.String()),
	)

	dropCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("token", outcome.Token.String())))

	switch outcome.Result {
	case session.ResultWin:
		slog.InfoContext(ctx, "Round won", "table.id", t.ID, "round", outcome.Round, "winner", t.session.Players[outcome.Winner], "score", t.session.Score)
		roundCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(session.ResultWin))))
	case session.ResultDraw:
		slog.InfoContext(ctx, "Round drawn", "table.id", t.ID, "round", outcome.Round)
		roundCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(session.ResultDraw))))
	}

	snap := t.session.Snapshot()
	t.save(ctx, snap)
	t.broadcast(ctx, proto.NewUpdateMessage(t.ID, snap, outcome))
}

// handleNewRound abandons the current board and starts the next round.
func (t *Table) handleNewRound(ctx context.Context, c *client.Client) {
	ctx, span := tracer.Start(ctx, "table.handleNewRound", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("table.id", t.ID),
	))
	defer span.End()

	t.session.NewRound()
	roundCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "restarted")))
	slog.InfoContext(ctx, "Round restarted", "table.id", t.ID, "round", t.session.Round)

	snap := t.session.Snapshot()
	t.save(ctx, snap)
	t.broadcast(ctx, proto.NewUpdateMessage(t.ID, snap, nil))
}

// save persists the table. A failed save is logged and play continues from
// memory.
func (t *Table) save(ctx context.Context, snap *session.Snapshot) {
	if err := t.repo.Save(ctx, t.ID, snap); err != nil {
		slog.ErrorContext(ctx, "failed to save table", "table.id", t.ID, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save table")
	}
}
