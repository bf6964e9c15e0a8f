package table

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var meter = otel.Meter("table")

var (
	dropCounter  metric.Int64Counter = noop.Int64Counter{}
	roundCounter metric.Int64Counter = noop.Int64Counter{}
)

func init() {
	if c, err := meter.Int64Counter("connectfour.drops",
		metric.WithDescription("Tokens dropped onto a board"),
	); err == nil {
		dropCounter = c
	} else {
		otel.Handle(err)
	}

	if c, err := meter.Int64Counter("connectfour.rounds.finished",
		metric.WithDescription("Rounds ended by a win, a draw or a restart"),
	); err == nil {
		roundCounter = c
	} else {
		otel.Handle(err)
	}
}
