// Package repository persists games in Redis and score tallies in SQLite.
package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/game"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks ctchen222/tictactoe-ai/internal/repository GameRepository,ScoreRepository,EventBus,Subscription

var tracer = otel.Tracer("repository")

var (
	ErrGameNotFound = errors.New("game not found")
	ErrConflict     = errors.New("game was modified concurrently")
)

// GameRepository stores live games.
type GameRepository interface {
	Create(ctx context.Context, g *game.Game) error
	FindByID(ctx context.Context, id string) (*game.Game, error)
	// Update loads the game, applies fn and writes the result back atomically.
	// An error from fn aborts the write and is returned unchanged.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error)
	Delete(ctx context.Context, id string) error
}

// ScoreRepository keeps per-player win tallies.
type ScoreRepository interface {
	Get(ctx context.Context, playerID string) (Scores, error)
	Increment(ctx context.Context, playerID string, winner game.Mark) (Scores, error)
	Clear(ctx context.Context, playerID string) error
}

// EventBus fans game events out to every subscriber of a game.
type EventBus interface {
	Publish(ctx context.Context, gameID string, event events.Event) error
	Subscribe(ctx context.Context, gameID string) (Subscription, error)
}

// Subscription delivers events until Close is called or its context ends.
type Subscription interface {
	Events() <-chan events.Event
	Close() error
}

// Scores is the tally of games won by each mark.
type Scores struct {
	PlayerID string `db:"player_id" json:"-"`
	XWins    int    `db:"x_wins" json:"x"`
	OWins    int    `db:"o_wins" json:"o"`
}
