package hub

import (
	"context"
	"log/slog"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/table"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// Hub owns every live table on this server. Tables are loaded from the
// repository when their first client arrives and closed when the last leaves.
type Hub struct {
	tables     map[string]*table.Table
	register   chan *types.RegistrationRequest
	unregister chan *client.Client
	repo       repository.TableRepository
}

// NewHub creates a new hub.
func NewHub(repo repository.TableRepository) *Hub {
	return &Hub{
		tables:     make(map[string]*table.Table),
		register:   make(chan *types.RegistrationRequest),
		unregister: make(chan *client.Client),
		repo:       repo,
	}
}

// Run processes registrations until ctx is cancelled, then closes every table.
func (h *Hub) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Hub started")
	for {
		select {
		case <-ctx.Done():
			for id, t := range h.tables {
				t.Close()
				delete(h.tables, id)
			}
			slog.Info("Hub stopped")
			return

		case req := <-h.register:
			regCtx := ctx
			if req.Ctx != nil {
				// Keep the caller's span but not its cancellation, the HTTP
				// request ends as soon as the connection is handed over.
				regCtx = context.WithoutCancel(req.Ctx)
			}
			h.handleRegistration(regCtx, req)

		case c := <-h.unregister:
			h.handleUnregister(ctx, c)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Unregister returns the unregister channel.
func (h *Hub) Unregister() chan<- *client.Client {
	return h.unregister
}
