package repository

//go:generate mockgen -source=table_repository.go -destination=mocks/mock_table_repository.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ctchen222/Connect-Four/internal/game"
	"ctchen222/Connect-Four/internal/session"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.table")

var (
	// ErrTableNotFound is returned when no live table exists for an id.
	ErrTableNotFound = errors.New("table not found")
	// ErrTableExists is returned by Create when the id is already in use.
	ErrTableExists = errors.New("table already exists")
)

// Hash fields of a table key.
const (
	FieldBoard   = "board"
	FieldWidth   = "width"
	FieldHeight  = "height"
	FieldPlayers = "players"
	FieldScore   = "score"
	FieldRound   = "round"
	FieldTurn    = "turn"
)

// DefaultTableTTL is how long an untouched table is kept.
const DefaultTableTTL = 24 * time.Hour

// TableRepository stores the live state of hot-seat tables.
type TableRepository interface {
	Create(ctx context.Context, id string, snap *session.Snapshot) error
	FindByID(ctx context.Context, id string) (*session.Snapshot, error)
	Save(ctx context.Context, id string, snap *session.Snapshot) error
}

type redisTableRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTableRepository creates a new Redis-based TableRepository. Every write
// refreshes the key's TTL.
func NewTableRepository(rdb *redis.Client, ttl time.Duration) TableRepository {
	if ttl <= 0 {
		ttl = DefaultTableTTL
	}
	return &redisTableRepository{rdb: rdb, ttl: ttl}
}

func tableKey(id string) string {
	return fmt.Sprintf("table:%s", id)
}

// Create stores the initial state of a new table.
func (r *redisTableRepository) Create(ctx context.Context, id string, snap *session.Snapshot) error {
	ctx, span := tracer.Start(ctx, "TableRepository.Create", trace.WithAttributes(attribute.String("table.id", id)))
	defer span.End()

	key := tableKey(id)
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check table in redis: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrTableExists, id)
	}

	if err := r.write(ctx, key, snap); err != nil {
		return fmt.Errorf("failed to create table in redis: %w", err)
	}
	return nil
}

// FindByID loads the state of a table.
func (r *redisTableRepository) FindByID(ctx context.Context, id string) (*session.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "TableRepository.FindByID", trace.WithAttributes(attribute.String("table.id", id)))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, tableKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get table from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", id, err)
	}
	return snap, nil
}

// Save overwrites the state of an existing table.
func (r *redisTableRepository) Save(ctx context.Context, id string, snap *session.Snapshot) error {
	ctx, span := tracer.Start(ctx, "TableRepository.Save", trace.WithAttributes(attribute.String("table.id", id)))
	defer span.End()

	key := tableKey(id)
	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrTableNotFound, id)
		}

		fields, err := encodeSnapshot(snap)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	return nil
}

func (r *redisTableRepository) write(ctx context.Context, key string, snap *session.Snapshot) error {
	fields, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func encodeSnapshot(snap *session.Snapshot) (map[string]interface{}, error) {
	boardJSON, err := json.Marshal(snap.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	playersJSON, err := json.Marshal(snap.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal players: %w", err)
	}
	scoreJSON, err := json.Marshal(snap.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score: %w", err)
	}

	return map[string]interface{}{
		FieldBoard:   string(boardJSON),
		FieldWidth:   snap.Width,
		FieldHeight:  snap.Height,
		FieldPlayers: string(playersJSON),
		FieldScore:   string(scoreJSON),
		FieldRound:   snap.Round,
		FieldTurn:    snap.Turn,
	}, nil
}

func decodeSnapshot(data map[string]string) (*session.Snapshot, error) {
	snap := &session.Snapshot{}

	ints := []struct {
		field string
		dest  *int
	}{
		{FieldWidth, &snap.Width},
		{FieldHeight, &snap.Height},
		{FieldRound, &snap.Round},
		{FieldTurn, &snap.Turn},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(data[f.field])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.field, err)
		}
		*f.dest = v
	}

	if err := json.Unmarshal([]byte(data[FieldBoard]), &snap.Columns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if err := json.Unmarshal([]byte(data[FieldPlayers]), &snap.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}
	if err := json.Unmarshal([]byte(data[FieldScore]), &snap.Score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score: %w", err)
	}
	snap.Next = game.Token(snap.Turn % 2)

	return snap, nil
}
