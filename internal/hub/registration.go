package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/session"
	"ctchen222/Connect-Four/internal/table"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegistration(ctx context.Context, req *types.RegistrationRequest) {
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("client.id", req.Client.ID),
		attribute.String("table.id", req.TableID),
	))
	defer span.End()

	t, err := h.loadTable(ctx, req.TableID)
	if err != nil {
		slog.WarnContext(ctx, "Rejecting client", "client.id", req.Client.ID, "table.id", req.TableID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not load table")

		reason := "table unavailable"
		if errors.Is(err, repository.ErrTableNotFound) {
			reason = "table not found"
		}
		h.rejectClient(ctx, req.Client, req.TableID, reason)
		return
	}

	t.AddClient(req.Client)
	go t.ReadPump(req.Client)
	t.SendState(ctx, req.Client)

	slog.InfoContext(ctx, "Client joined table", "client.id", req.Client.ID, "table.id", t.ID)
}

// loadTable returns the live table for id, restoring it from the repository
// and starting its run loop when this server does not hold it yet.
func (h *Hub) loadTable(ctx context.Context, id string) (*table.Table, error) {
	if t, ok := h.tables[id]; ok {
		return t, nil
	}

	snap, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := session.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore table %s: %w", id, err)
	}

	t := table.NewTable(id, s, h.repo)
	t.Start(h.unregister)
	h.tables[id] = t
	slog.InfoContext(ctx, "Table opened", "table.id", id, "round", s.Round)
	return t, nil
}

func (h *Hub) handleUnregister(ctx context.Context, c *client.Client) {
	t, ok := h.tables[c.TableID]
	if !ok {
		return
	}
	if remaining := t.RemoveClient(c.ID); remaining == 0 {
		t.Close()
		delete(h.tables, c.TableID)
		slog.InfoContext(ctx, "Table closed, no clients left", "table.id", c.TableID)
	}
	slog.InfoContext(ctx, "Client left table", "client.id", c.ID, "table.id", c.TableID)
}
