// Package session runs games for players: it applies human moves, schedules
// the computer's reply and keeps score.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrForbidden = errors.New("game belongs to another player")
)

// errComputerNotDue aborts a scheduled computer move whose game moved on.
var errComputerNotDue = errors.New("computer move no longer due")

// MoveChooser picks the computer's cell. *bot.Engine satisfies it.
type MoveChooser interface {
	ChooseMove(board game.Board, difficulty bot.Difficulty) (int, error)
}

type Service struct {
	games  repository.GameRepository
	scores repository.ScoreRepository
	bus    repository.EventBus
	engine MoveChooser
	delay  time.Duration

	moves          metric.Int64Counter
	finished       metric.Int64Counter
	engineDuration metric.Float64Histogram

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewService wires the service. The computer answers delay after a human
// move; with a zero delay it answers before Move returns.
func NewService(
	games repository.GameRepository,
	scores repository.ScoreRepository,
	bus repository.EventBus,
	engine MoveChooser,
	delay time.Duration,
) (*Service, error) {
	s := &Service{
		games:  games,
		scores: scores,
		bus:    bus,
		engine: engine,
		delay:  delay,
		done:   make(chan struct{}),
	}

	var err error
	if s.moves, err = meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves applied to games."),
	); err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}
	if s.finished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached a win or a draw."),
	); err != nil {
		return nil, fmt.Errorf("failed to create finished counter: %w", err)
	}
	if s.engineDuration, err = meter.Float64Histogram("tictactoe.engine.duration",
		metric.WithDescription("Time the engine spent choosing a move."),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create engine histogram: %w", err)
	}
	return s, nil
}

// Create starts a game owned by playerID. Games against the computer need a
// difficulty; hot-seat games ignore it.
func (s *Service) Create(ctx context.Context, playerID string, mode game.Mode, difficulty string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "session.Create", trace.WithAttributes(
		attribute.String("player.id", playerID),
		attribute.String("game.mode", string(mode)),
		attribute.String("game.difficulty", difficulty),
	))
	defer span.End()

	if mode == game.ModePvC {
		if _, err := bot.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
	}
	g, err := game.New(uuid.NewString(), playerID, mode, difficulty)
	if err != nil {
		return nil, err
	}
	if err := s.games.Create(ctx, g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store game")
		return nil, err
	}

	span.SetAttributes(attribute.String("game.id", g.ID))
	slog.InfoContext(ctx, "game created", "game.id", g.ID, "player.id", playerID, "game.mode", mode)
	return g, nil
}

func (s *Service) Get(ctx context.Context, playerID, id string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "session.Get", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	g, err := s.games.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	if g.PlayerID != playerID {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	return g, nil
}

// Move plays cell for whoever is to move on the human side.
func (s *Service) Move(ctx context.Context, playerID, id string, cell int) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "session.Move", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.String("player.id", playerID),
		attribute.Int("move.cell", cell),
	))
	defer span.End()

	var mark game.Mark
	g, err := s.games.Update(ctx, id, func(g *game.Game) error {
		if g.PlayerID != playerID {
			return fmt.Errorf("%w: %s", ErrForbidden, id)
		}
		if g.ComputerToMove() {
			return game.ErrNotYourTurn
		}
		mark = g.Turn
		return g.Play(cell, mark)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		slog.DebugContext(ctx, "move rejected", "game.id", id, "move.cell", cell, "error", err)
		return nil, translate(err, id)
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	s.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("player.kind", "human")))
	s.afterMove(ctx, g, cell, mark)

	if !g.ComputerToMove() {
		return g, nil
	}
	if s.delay == 0 {
		return s.playComputer(ctx, id, g.Round)
	}
	s.schedule(ctx, id, g.Round)
	return g, nil
}

// Reset clears the board for another round. A pending computer move is dropped.
func (s *Service) Reset(ctx context.Context, playerID, id string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	g, err := s.games.Update(ctx, id, func(g *game.Game) error {
		if g.PlayerID != playerID {
			return fmt.Errorf("%w: %s", ErrForbidden, id)
		}
		g.Reset()
		return nil
	})
	if err != nil {
		return nil, translate(err, id)
	}
	s.publish(ctx, g.ID, events.TypeGameUpdated, events.GameUpdatedPayload{Game: g, LastMove: -1})
	return g, nil
}

func (s *Service) Scores(ctx context.Context, playerID string) (repository.Scores, error) {
	ctx, span := tracer.Start(ctx, "session.Scores", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()
	return s.scores.Get(ctx, playerID)
}

func (s *Service) ClearScores(ctx context.Context, playerID string) error {
	ctx, span := tracer.Start(ctx, "session.ClearScores", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()

	if err := s.scores.Clear(ctx, playerID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "scores cleared", "player.id", playerID)
	return nil
}

// Close drops scheduled computer moves and waits for running ones. Moves
// made afterwards are no longer answered by the computer.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// schedule plays the computer's move after the pacing delay. The request
// context's values (the trace) carry over but its cancellation does not.
func (s *Service) schedule(ctx context.Context, id string, round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.WarnContext(ctx, "service closed, computer move not scheduled", "game.id", id)
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-s.done:
			return
		}
		if _, err := s.playComputer(ctx, id, round); err != nil && !errors.Is(err, errComputerNotDue) {
			slog.ErrorContext(ctx, "computer move failed", "game.id", id, "error", err)
		}
	}()
}

// playComputer answers the human move made in round. A reset since then
// makes the reply stale.
func (s *Service) playComputer(ctx context.Context, id string, round int) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "session.playComputer", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("game.round", round),
	))
	defer span.End()

	var cell int
	g, err := s.games.Update(ctx, id, func(g *game.Game) error {
		if g.Round != round || !g.ComputerToMove() {
			return errComputerNotDue
		}
		difficulty, err := bot.ParseDifficulty(g.Difficulty)
		if err != nil {
			return err
		}

		start := time.Now()
		cell, err = s.engine.ChooseMove(g.Board, difficulty)
		s.engineDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000,
			metric.WithAttributes(attribute.String("game.difficulty", string(difficulty))))
		if err != nil {
			return err
		}
		return g.Play(cell, game.ComputerMark)
	})
	if err != nil {
		if !errors.Is(err, errComputerNotDue) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "computer move failed")
		}
		return nil, translate(err, id)
	}

	span.SetAttributes(attribute.Int("move.cell", cell))
	s.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("player.kind", "computer")))
	slog.DebugContext(ctx, "computer moved", "game.id", id, "move.cell", cell, "game.difficulty", g.Difficulty)
	s.afterMove(ctx, g, cell, game.ComputerMark)
	return g, nil
}

// afterMove publishes the new state and, once the game is over, records the result.
func (s *Service) afterMove(ctx context.Context, g *game.Game, cell int, mark game.Mark) {
	s.publish(ctx, g.ID, events.TypeGameUpdated, events.GameUpdatedPayload{Game: g, LastMove: cell, LastMark: mark})
	if g.Phase != game.Finished {
		return
	}

	s.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.outcome", string(g.Outcome)),
		attribute.String("game.mode", string(g.Mode)),
	))

	winner := g.Outcome.Winner()
	if winner != game.Empty {
		if _, err := s.scores.Increment(ctx, g.PlayerID, winner); err != nil {
			slog.ErrorContext(ctx, "failed to record score", "game.id", g.ID, "player.id", g.PlayerID, "error", err)
		}
	}
	slog.InfoContext(ctx, "game finished", "game.id", g.ID, "game.outcome", g.Outcome)
	s.publish(ctx, g.ID, events.TypeGameFinished, events.GameFinishedPayload{Outcome: g.Outcome, Winner: winner, Line: g.Line})
}

// publish logs failures; a lost event never fails the move that caused it.
func (s *Service) publish(ctx context.Context, gameID, eventType string, payload any) {
	ev, err := events.New(eventType, gameID, payload)
	if err == nil {
		err = s.bus.Publish(ctx, gameID, ev)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "game.id", gameID, "event.type", eventType, "error", err)
	}
}

func translate(err error, id string) error {
	if errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}
