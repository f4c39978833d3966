// Package engine implements the deterministic turn core: command
// classification, action effects, the siege scheduler, combat, and the
// ending logic, plus the optional generative narrator layered on top.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/tatianab/lone-garrison/internal/content"
	"github.com/tatianab/lone-garrison/internal/models"
)

// Options configures a new Engine.
type Options struct {
	// APIKey enables the generative narrator. Empty means the engine
	// runs fully offline on its template pools.
	APIKey string
	// Lang selects the keyword tables commands are matched against.
	Lang models.Language
	// Seed fixes the random stream; zero seeds from the wall clock.
	Seed   int64
	Logger zerolog.Logger
}

// Engine owns the random stream, the content library, and the optional
// narrator. It is not safe for concurrent use; callers serialize turns.
type Engine struct {
	rng      *rand.Rand
	lib      *content.Library
	narrator *Narrator
	lang     models.Language
	log      zerolog.Logger
}

func New(ctx context.Context, opts Options) (*Engine, error) {
	lib, err := content.Load()
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	lang := opts.Lang
	if lang == "" {
		lang = models.LangEN
	}
	narrator, err := NewNarrator(ctx, opts.APIKey, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rng:      rand.New(rand.NewSource(seed)),
		lib:      lib,
		narrator: narrator,
		lang:     lang,
		log:      opts.Logger,
	}, nil
}

func (e *Engine) Close() {
	e.narrator.Close()
}

// NewGame returns the fixed opening state.
func (e *Engine) NewGame() *models.GameState {
	return models.NewGameState()
}

// Library exposes the loaded content tables to the presentation layer.
func (e *Engine) Library() *content.Library {
	return e.lib
}

// Advise forwards a question to the out-of-band advisor chat.
func (e *Engine) Advise(ctx context.Context, history []ChatMessage, message string) (string, error) {
	return e.narrator.Advise(ctx, history, message)
}
