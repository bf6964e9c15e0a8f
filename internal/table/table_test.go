package table

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/game"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/internal/repository/mocks"
	"ctchen222/Connect-Four/internal/session"
	"ctchen222/Connect-Four/pkg/proto"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeConn records writes and serves reads from a channel.
type fakeConn struct {
	mu      sync.Mutex
	written []proto.ServerToClientMessage
	pings   int
	reads   chan []byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 10)}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.PingMessage {
		f.pings++
		return nil
	}
	var msg proto.ServerToClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	f.written = append(f.written, msg)
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.reads
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, msg, nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []proto.ServerToClientMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]proto.ServerToClientMessage{}, f.written...)
}

func dropFrame(t *testing.T, column int) []byte {
	t.Helper()
	return mustJSON(t, proto.ClientToServerMessage{Type: proto.TypeDrop, Column: &column})
}

func newTestTable(t *testing.T, repo *mocks.MockTableRepository) *Table {
	t.Helper()
	s, err := session.New(game.DefaultWidth, game.DefaultHeight, [2]string{"Veronika", "Lane"})
	require.NoError(t, err)
	return NewTable("table-1", s, repo)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleMessage_DropBroadcastsAndSaves(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	tbl := newTestTable(t, repo)

	conn1, conn2 := newFakeConn(), newFakeConn()
	c1 := client.NewClient("c1", tbl.ID, conn1)
	tbl.AddClient(c1)
	tbl.AddClient(client.NewClient("c2", tbl.ID, conn2))

	repo.EXPECT().
		Save(gomock.Any(), "table-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, snap *session.Snapshot) error {
			assert.Equal(t, []game.Token{game.PlayerTwo}, snap.Columns[3])
			return nil
		})

	tbl.HandleMessage(c1, dropFrame(t, 3))

	for _, conn := range []*fakeConn{conn1, conn2} {
		msgs := conn.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, proto.TypeUpdate, msgs[0].Type)
		assert.Equal(t, &proto.Move{Column: 3, Row: 0, Token: game.PlayerTwo}, msgs[0].Move)
		assert.Equal(t, game.PlayerOne, msgs[0].State.Next)
	}
}

func TestHandleMessage_InvalidDropOnlyTellsSender(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "column past the edge", raw: []byte(`{"type":"drop","column":7}`)},
		{name: "negative column", raw: []byte(`{"type":"drop","column":-1}`)},
		{name: "drop without column", raw: []byte(`{"type":"drop"}`)},
		{name: "null column", raw: []byte(`{"type":"drop","column":null}`)},
		{name: "unknown type", raw: []byte(`{"type":"undo"}`)},
		{name: "malformed json", raw: []byte(`{"type":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockTableRepository(ctrl)
			repo.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			tbl := newTestTable(t, repo)

			sender, other := newFakeConn(), newFakeConn()
			c := client.NewClient("c1", tbl.ID, sender)
			tbl.AddClient(c)
			tbl.AddClient(client.NewClient("c2", tbl.ID, other))

			before := tbl.Snapshot()
			tbl.HandleMessage(c, tt.raw)

			msgs := sender.messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, proto.TypeError, msgs[0].Type)
			assert.NotEmpty(t, msgs[0].Reason)
			assert.Empty(t, other.messages())
			assert.Equal(t, before, tbl.Snapshot())
		})
	}
}

func TestHandleMessage_FullColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), "table-1", gomock.Any()).Return(nil).Times(game.DefaultHeight)

	tbl := newTestTable(t, repo)
	conn := newFakeConn()
	c := client.NewClient("c1", tbl.ID, conn)
	tbl.AddClient(c)

	drop := dropFrame(t, 0)
	for i := 0; i <= game.DefaultHeight; i++ {
		tbl.HandleMessage(c, drop)
	}

	msgs := conn.messages()
	require.Len(t, msgs, game.DefaultHeight+1)
	last := msgs[len(msgs)-1]
	assert.Equal(t, proto.TypeError, last.Type)
	assert.Contains(t, last.Reason, game.ErrColumnFull.Error())
}

func TestHandleMessage_WinEndsRound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), "table-1", gomock.Any()).Return(nil).AnyTimes()

	tbl := newTestTable(t, repo)
	conn := newFakeConn()
	c := client.NewClient("c1", tbl.ID, conn)
	tbl.AddClient(c)

	for _, col := range []int{0, 0, 1, 1, 2, 2, 3} {
		tbl.HandleMessage(c, dropFrame(t, col))
	}

	msgs := conn.messages()
	require.Len(t, msgs, 7)
	last := msgs[6]
	assert.Equal(t, session.ResultWin, last.Result)
	if assert.NotNil(t, last.Winner) {
		assert.Equal(t, game.PlayerTwo, *last.Winner)
	}
	assert.Len(t, last.FinalBoard, game.DefaultWidth)
	assert.Equal(t, [2]int{0, 1}, last.State.Score)
	assert.Equal(t, 2, last.State.Round)
}

func TestHandleMessage_NewRoundAndState(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), "table-1", gomock.Any()).Return(nil).Times(2)

	tbl := newTestTable(t, repo)
	conn := newFakeConn()
	c := client.NewClient("c1", tbl.ID, conn)
	tbl.AddClient(c)

	tbl.HandleMessage(c, dropFrame(t, 5))
	tbl.HandleMessage(c, mustJSON(t, proto.ClientToServerMessage{Type: proto.TypeNewRound}))
	tbl.HandleMessage(c, mustJSON(t, proto.ClientToServerMessage{Type: proto.TypeState}))

	msgs := conn.messages()
	require.Len(t, msgs, 3)

	assert.Equal(t, proto.TypeUpdate, msgs[1].Type)
	assert.Nil(t, msgs[1].Move)
	assert.Equal(t, 2, msgs[1].State.Round)
	assert.Empty(t, msgs[1].State.Columns[5])

	assert.Equal(t, proto.TypeState, msgs[2].Type)
	assert.Equal(t, msgs[1].State, msgs[2].State)
}

func TestHandleMessage_SaveFailureStillBroadcasts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), "table-1", gomock.Any()).Return(errors.New("redis down"))

	tbl := newTestTable(t, repo)
	conn := newFakeConn()
	c := client.NewClient("c1", tbl.ID, conn)
	tbl.AddClient(c)

	tbl.HandleMessage(c, dropFrame(t, 1))

	msgs := conn.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, proto.TypeUpdate, msgs[0].Type)
	assert.Len(t, tbl.Snapshot().Columns[1], 1)
}

func TestReadPumpFeedsRunLoopAndUnregisters(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTableRepository(ctrl)
	saved := make(chan struct{}, 1)
	repo.EXPECT().Save(gomock.Any(), "table-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, _ *session.Snapshot) error {
		saved <- struct{}{}
		return nil
	})

	tbl := newTestTable(t, repo)
	unregister := make(chan *client.Client, 1)
	tbl.Start(unregister)
	defer tbl.Close()

	conn := newFakeConn()
	c := client.NewClient("c1", tbl.ID, conn)
	tbl.AddClient(c)
	go tbl.ReadPump(c)

	conn.reads <- dropFrame(t, 6)

	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("drop was not processed by the run loop")
	}

	close(conn.reads)

	select {
	case got := <-unregister:
		assert.Same(t, c, got)
	case <-time.After(time.Second):
		t.Fatal("client was not unregistered after its connection closed")
	}

	conn.mu.Lock()
	assert.True(t, conn.closed)
	conn.mu.Unlock()
}

func TestCloseIsIdempotent(t *testing.T) {
	tbl := newTestTable(t, mocks.NewMockTableRepository(gomock.NewController(t)))
	tbl.Start(make(chan *client.Client))

	tbl.Close()
	tbl.Close()

	select {
	case <-tbl.Done():
	default:
		t.Fatal("Done was not closed")
	}
	select {
	case <-tbl.stopped:
	default:
		t.Fatal("run loop still running after Close returned")
	}
}

func TestRunIgnoresFramesQueuedBeforeClose(t *testing.T) {
	repo := mocks.NewMockTableRepository(gomock.NewController(t))
	repo.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Both select cases are ready on every pass, so a loop that relied on
	// select order alone would handle the frame about half of the time.
	for i := 0; i < 32; i++ {
		tbl := newTestTable(t, repo)
		conn := newFakeConn()
		c := client.NewClient("c1", tbl.ID, conn)
		tbl.AddClient(c)

		tbl.incoming <- &types.ClientMessage{Client: c, Message: dropFrame(t, 0)}
		tbl.Close()
		tbl.run()

		assert.Empty(t, conn.messages())
		assert.Empty(t, tbl.Snapshot().Columns[0])
	}
}

func TestRemoveClient(t *testing.T) {
	tbl := newTestTable(t, mocks.NewMockTableRepository(gomock.NewController(t)))
	tbl.AddClient(client.NewClient("c1", tbl.ID, newFakeConn()))
	tbl.AddClient(client.NewClient("c2", tbl.ID, newFakeConn()))

	assert.Equal(t, 1, tbl.RemoveClient("c1"))
	assert.Equal(t, 1, tbl.RemoveClient("missing"))
	assert.Equal(t, 0, tbl.RemoveClient("c2"))
}
