package types

import (
	"context"

	"ctchen222/Connect-Four/internal/client"
)

// ClientMessage is a raw message read from a client's connection.
type ClientMessage struct {
	Client  *client.Client
	Message []byte
}

// RegistrationRequest asks the hub to attach a client to a table.
type RegistrationRequest struct {
	Client  *client.Client
	TableID string
	Ctx     context.Context
}
