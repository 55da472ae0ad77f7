package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/game"
)

// Redis hash fields of a stored game.
const (
	fieldPlayerID   = "player_id"
	fieldMode       = "mode"
	fieldDifficulty = "difficulty"
	fieldBoard      = "board"
	fieldTurn       = "turn"
	fieldPhase      = "phase"
	fieldOutcome    = "outcome"
	fieldLine       = "line"
	fieldMoves      = "moves"
	fieldRound      = "round"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

const maxUpdateRetries = 5

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a Redis-backed GameRepository. Games idle for
// longer than ttl expire; a zero ttl keeps them forever.
func NewGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

func (r *redisGameRepository) Create(ctx context.Context, g *game.Game) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Create", trace.WithAttributes(attribute.String("game.id", g.ID)))
	defer span.End()

	fields, err := encodeGame(g)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode game")
		return err
	}

	key := gameKey(g.ID)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create game")
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	return nil
}

func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	g, err := load(ctx, r.rdb, id)
	if err != nil && !errors.Is(err, ErrGameNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load game")
	}
	return g, err
}

// Update applies fn inside a WATCH/MULTI transaction and retries when another
// writer touched the game in between.
func (r *redisGameRepository) Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	key := gameKey(id)
	var updated *game.Game

	txf := func(tx *redis.Tx) error {
		g, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = time.Now().UTC()

		fields, err := encodeGame(g)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			if r.ttl > 0 {
				pipe.Expire(ctx, key, r.ttl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = g
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			span.SetAttributes(attribute.Int("update.attempts", attempt+1))
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if !errors.Is(err, ErrGameNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to update game")
		}
		return nil, err
	}

	span.SetStatus(codes.Error, "too many concurrent updates")
	return nil, fmt.Errorf("%w: %s", ErrConflict, id)
}

func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	n, err := r.rdb.Del(ctx, gameKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete game")
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return nil
}

// load reads a game through either the client or a watching transaction.
func load(ctx context.Context, c redis.Cmdable, id string) (*game.Game, error) {
	data, err := c.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return decodeGame(id, data)
}

func encodeGame(g *game.Game) (map[string]any, error) {
	board, err := json.Marshal(g.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	line, err := json.Marshal(g.Line)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal winning line: %w", err)
	}
	return map[string]any{
		fieldPlayerID:   g.PlayerID,
		fieldMode:       string(g.Mode),
		fieldDifficulty: g.Difficulty,
		fieldBoard:      board,
		fieldTurn:       string(g.Turn),
		fieldPhase:      string(g.Phase),
		fieldOutcome:    string(g.Outcome),
		fieldLine:       line,
		fieldMoves:      g.Moves,
		fieldRound:      g.Round,
		fieldCreatedAt:  g.CreatedAt.Format(time.RFC3339Nano),
		fieldUpdatedAt:  g.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

func decodeGame(id string, data map[string]string) (*game.Game, error) {
	g := &game.Game{
		ID:         id,
		PlayerID:   data[fieldPlayerID],
		Mode:       game.Mode(data[fieldMode]),
		Difficulty: data[fieldDifficulty],
		Turn:       game.Mark(data[fieldTurn]),
		Phase:      game.Phase(data[fieldPhase]),
		Outcome:    game.Outcome(data[fieldOutcome]),
	}
	if err := json.Unmarshal([]byte(data[fieldBoard]), &g.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if !g.Board.Valid() {
		return nil, fmt.Errorf("stored board for game %s is corrupt", id)
	}
	if err := json.Unmarshal([]byte(data[fieldLine]), &g.Line); err != nil {
		return nil, fmt.Errorf("failed to unmarshal winning line: %w", err)
	}

	var err error
	if g.Moves, err = strconv.Atoi(data[fieldMoves]); err != nil {
		return nil, fmt.Errorf("failed to parse move count: %w", err)
	}
	// Games stored before rounds were tracked have no round field.
	if round := data[fieldRound]; round != "" {
		if g.Round, err = strconv.Atoi(round); err != nil {
			return nil, fmt.Errorf("failed to parse round: %w", err)
		}
	}
	if g.CreatedAt, err = time.Parse(time.RFC3339Nano, data[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if g.UpdatedAt, err = time.Parse(time.RFC3339Nano, data[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return g, nil
}
