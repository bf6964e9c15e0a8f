package models

import "ctchen222/Connect-Four/internal/session"

// CreateTableRequest names the two players sharing the table. Empty names
// fall back to the defaults.
type CreateTableRequest struct {
	Players [2]string `json:"players" validate:"dive,playername"`
}

// CreateTableResponse carries the id clients use to join over websocket.
type CreateTableResponse struct {
	TableID string            `json:"table_id"`
	State   *session.Snapshot `json:"state"`
}
