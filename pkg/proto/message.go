package proto

import (
	"ctchen222/Connect-Four/internal/game"
	"ctchen222/Connect-Four/internal/session"
)

// Client message types.
const (
	TypeDrop     = "drop"
	TypeNewRound = "new_round"
	TypeState    = "state"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
// Column is required for drops, a missing column must not read as column 0.
type ClientToServerMessage struct {
	Type   string `json:"type" validate:"required,oneof=drop new_round state"`
	Column *int   `json:"column,omitempty" validate:"required_if=Type drop,omitempty,min=0"`
}

// Move is the drop that produced an update.
type Move struct {
	Column int        `json:"column"`
	Row    int        `json:"row"`
	Token  game.Token `json:"token"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string            `json:"type" validate:"required"`
	TableID    string            `json:"table_id,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	State      *session.Snapshot `json:"state,omitempty"`
	Move       *Move             `json:"move,omitempty"`
	Result     session.Result    `json:"result,omitempty"`
	Winner     *game.Token       `json:"winner,omitempty"`
	FinalBoard [][]game.Token    `json:"final_board,omitempty"`
}

// NewStateMessage builds a "state" message.
func NewStateMessage(tableID string, snap *session.Snapshot) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeState, TableID: tableID, State: snap}
}

// NewUpdateMessage builds an "update" message from a drop outcome.
func NewUpdateMessage(tableID string, snap *session.Snapshot, out *session.Outcome) *ServerToClientMessage {
	msg := &ServerToClientMessage{Type: TypeUpdate, TableID: tableID, State: snap}
	if out == nil {
		return msg
	}

	msg.Move = &Move{Column: out.Column, Row: out.Row, Token: out.Token}
	msg.Result = out.Result
	msg.FinalBoard = out.FinalBoard
	if out.Result == session.ResultWin {
		winner := out.Winner
		msg.Winner = &winner
	}
	return msg
}

// NewErrorMessage builds an "error" message.
func NewErrorMessage(tableID, reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, TableID: tableID, Reason: reason}
}
