package table

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/session"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

const (
	heartbeatInterval = 10 * time.Second
)

var tracer = otel.Tracer("table")

// Table is one live hot-seat table. All session mutations happen while holding
// mu, and in normal operation only from the run loop.
type Table struct {
	ID               string
	repo             repository.TableRepository
	session          *session.Session
	clients          map[string]*client.Client
	mu               sync.Mutex
	incoming         chan *types.ClientMessage
	unregisterClient chan<- *client.Client
	done             chan struct{}
	stopped          chan struct{}
	started          bool
	closeOnce        sync.Once
}

// NewTable creates a table around an existing session.
func NewTable(id string, s *session.Session, repo repository.TableRepository) *Table {
	return &Table{
		ID:       id,
		repo:     repo,
		session:  s,
		clients:  make(map[string]*client.Client),
		incoming: make(chan *types.ClientMessage, 10),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the table's run loop. Clients whose connection drops are sent
// to unregister.
func (t *Table) Start(unregister chan<- *client.Client) {
	t.unregisterClient = unregister
	t.started = true
	go t.run()
}

// Close stops the run loop and, once started, waits for it to return, so no
// message is handled or saved after Close. It is safe to call more than once.
func (t *Table) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
	if t.started {
		<-t.stopped
	}
}

// Done is closed once the table has been closed.
func (t *Table) Done() <-chan struct{} {
	return t.done
}

// AddClient attaches a client to the table.
func (t *Table) AddClient(c *client.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients[c.ID] = c
}

// RemoveClient detaches a client and returns how many remain.
func (t *Table) RemoveClient(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, id)
	return len(t.clients)
}

// Snapshot returns the current session state.
func (t *Table) Snapshot() *session.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Snapshot()
}

// run is the main loop for the table.
func (t *Table) run() {
	defer close(t.stopped)

	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-t.done:
			slog.Info("Table run goroutine stopping.", "table.id", t.ID)
			return

		case msg := <-t.incoming:
			// Frames still buffered after Close must not reach the session.
			select {
			case <-t.done:
				slog.Info("Table closed, dropping pending message", "table.id", t.ID, "client.id", msg.Client.ID)
				return
			default:
			}
			t.HandleMessage(msg.Client, msg.Message)

		case <-pingTicker.C:
			t.ping(context.Background())
		}
	}
}

func (t *Table) ping(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range t.clients {
		if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
			slog.WarnContext(ctx, "Failed to send ping to client, assuming disconnect", "client.id", c.ID, "table.id", t.ID, "error", err)
		}
	}
}
