package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/game"
)

type sqliteScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a SQLite-based ScoreRepository.
func NewScoreRepository(db *sqlx.DB) ScoreRepository {
	return &sqliteScoreRepository{db: db}
}

// Get returns zero tallies for a player that never finished a game.
func (r *sqliteScoreRepository) Get(ctx context.Context, playerID string) (Scores, error) {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Get", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()

	s, err := r.get(ctx, r.db, playerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get scores")
	}
	return s, err
}

func (r *sqliteScoreRepository) get(ctx context.Context, q sqlx.QueryerContext, playerID string) (Scores, error) {
	var s Scores
	err := sqlx.GetContext(ctx, q, &s, `SELECT player_id, x_wins, o_wins FROM scores WHERE player_id = ?`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Scores{PlayerID: playerID}, nil
	}
	if err != nil {
		return Scores{}, fmt.Errorf("failed to get scores: %w", err)
	}
	return s, nil
}

// Increment adds one win for winner and returns the new tallies.
func (r *sqliteScoreRepository) Increment(ctx context.Context, playerID string, winner game.Mark) (Scores, error) {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Increment", trace.WithAttributes(
		attribute.String("player.id", playerID),
		attribute.String("game.winner", string(winner)),
	))
	defer span.End()

	var column string
	switch winner {
	case game.X:
		column = "x_wins"
	case game.O:
		column = "o_wins"
	default:
		return Scores{}, fmt.Errorf("cannot record a win for mark %q", winner)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Scores{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO scores (player_id, %[1]s) VALUES (?, 1)
		ON CONFLICT(player_id) DO UPDATE SET %[1]s = %[1]s + 1, updated_at = CURRENT_TIMESTAMP`, column)
	if _, err := tx.ExecContext(ctx, query, playerID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to increment score")
		return Scores{}, fmt.Errorf("failed to increment score: %w", err)
	}

	s, err := r.get(ctx, tx, playerID)
	if err != nil {
		return Scores{}, err
	}
	if err := tx.Commit(); err != nil {
		return Scores{}, fmt.Errorf("failed to commit score: %w", err)
	}
	return s, nil
}

func (r *sqliteScoreRepository) Clear(ctx context.Context, playerID string) error {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Clear", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE player_id = ?`, playerID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear scores")
		return fmt.Errorf("failed to clear scores: %w", err)
	}
	return nil
}
