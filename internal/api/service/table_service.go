package service

import (
	"context"
	"fmt"

	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/session"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service.table")

// TableService creates and looks up hot-seat tables.
type TableService interface {
	Create(ctx context.Context, players [2]string) (string, *session.Snapshot, error)
	Get(ctx context.Context, id string) (*session.Snapshot, error)
}

type tableService struct {
	repo          repository.TableRepository
	width, height int
}

// NewTableService creates tables with boards of the given size.
func NewTableService(repo repository.TableRepository, width, height int) TableService {
	return &tableService{repo: repo, width: width, height: height}
}

// Create starts round one for the given players and stores it under a new id.
// Empty names fall back to session.DefaultPlayers.
func (s *tableService) Create(ctx context.Context, players [2]string) (string, *session.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "service.table.Create")
	defer span.End()

	sess, err := session.New(s.width, s.height, players)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start session")
		return "", nil, fmt.Errorf("failed to start session: %w", err)
	}

	id := uuid.New().String()
	span.SetAttributes(attribute.String("table.id", id))

	snap := sess.Snapshot()
	if err := s.repo.Create(ctx, id, snap); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store table")
		return "", nil, fmt.Errorf("failed to store table: %w", err)
	}
	return id, snap, nil
}

// Get returns the stored state of a table.
func (s *tableService) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "service.table.Get", trace.WithAttributes(
		attribute.String("table.id", id),
	))
	defer span.End()

	snap, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find table")
		return nil, err
	}
	return snap, nil
}
