// Package pipeline runs one daily panda generation: read the event ledger,
// ask the text model for a prompt, render it as an image, then persist the
// image, the prompt, the new ledger entry and the README annotation.
//
// Nothing is written until both model calls have succeeded, so a failed run
// leaves the store untouched.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fpang/daily-panda/internal/chat"
	"github.com/fpang/daily-panda/internal/ledger"
	"github.com/fpang/daily-panda/internal/metrics"
	"github.com/fpang/daily-panda/internal/params"
	"github.com/fpang/daily-panda/internal/prompt"
	"github.com/fpang/daily-panda/internal/readme"
	"github.com/fpang/daily-panda/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TextGenerator writes the image prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, req chat.TextRequest) (string, error)
}

// ImageGenerator renders a prompt as PNG bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Annotator records the prompt in the human-readable log.
type Annotator interface {
	Annotate(ctx context.Context, prompt string) error
}

// Runner wires the collaborators of a run. Use NewRunner for the defaults.
type Runner struct {
	Text   TextGenerator
	Image  ImageGenerator
	Store  storage.Store
	Ledger *ledger.Ledger
	Readme Annotator

	// Clock supplies the generation date. Run durations use wall time.
	Clock func() time.Time

	// Metrics receives one EMF line per run when non-nil.
	Metrics io.Writer

	// DryRun stops after the text model answers and writes nothing.
	DryRun bool
}

// NewRunner returns a Runner whose ledger and README live in store.
func NewRunner(text TextGenerator, image ImageGenerator, store storage.Store) *Runner {
	return &Runner{
		Text:   text,
		Image:  image,
		Store:  store,
		Ledger: ledger.New(store),
		Readme: readme.NewUpdater(store),
		Clock:  time.Now,
	}
}

// Result describes a finished run, successful or not.
type Result struct {
	RunID       string
	State       State
	Params      params.Parameters
	Instruction prompt.Instruction
	Artifact    Artifact
	Entry       string
	Keys        []string
	DryRun      bool
	Duration    time.Duration
}

// Run executes one generation. On failure the returned Result reports the
// state reached and the error is a *Error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	start := time.Now()

	res := &Result{
		RunID:  uuid.NewString(),
		State:  StateIdle,
		DryRun: r.DryRun,
	}
	res.Artifact.Date = params.Date(clock().Date())

	logger := log.With().
		Str("run_id", res.RunID).
		Str("date", res.Artifact.Date.Format(params.ISODate)).
		Logger()
	logger.Info().Bool("dry_run", r.DryRun).Msg("Starting panda generation")

	var runErr error
	for !IsTerminal(res.State) {
		state := res.State
		stepStart := time.Now()
		err := r.step(ctx, state, res, &logger)
		logger.Debug().
			Stringer("state", state).
			Dur("duration", time.Since(stepStart)).
			Err(err).
			Msg("Step finished")

		if err != nil {
			runErr = &Error{Kind: kindFor(state), State: state, Err: err}
		}
		res.State = Next(state, err)
		if r.DryRun && state == StateRequestingText && err == nil {
			res.State = StateDone
		}
	}
	res.Duration = time.Since(start)

	r.recordMetrics(res, runErr)

	if runErr != nil {
		logger.Error().Err(runErr).Dur("duration", res.Duration).Msg("Panda generation failed")
		return res, runErr
	}
	logger.Info().
		Str("prompt", res.Artifact.Prompt).
		Int("image_bytes", len(res.Artifact.Image)).
		Dur("duration", res.Duration).
		Msg("Panda generation complete")
	return res, nil
}

// step performs the work of state s.
func (r *Runner) step(ctx context.Context, s State, res *Result, logger *zerolog.Logger) error {
	switch s {
	case StateIdle:
		res.Params = params.Derive(res.Artifact.Date)
		logger.Info().
			Float64("temperature", res.Params.Temperature).
			Float64("presence_penalty", res.Params.PresencePenalty).
			Float64("frequency_penalty", res.Params.FrequencyPenalty).
			Uint32("seed", res.Params.Seed).
			Msg("Derived generation parameters")
		return nil

	case StateComposingPrompt:
		past, err := r.ledger().ReadAll(ctx)
		if err != nil {
			return err
		}
		res.Instruction = prompt.BuildInstruction(res.Artifact.Date, past)
		logger.Debug().Int("past_events_length", len(past)).Msg("Instruction composed")
		return nil

	case StateRequestingText:
		raw, err := r.Text.GenerateText(ctx, chat.TextRequest{
			System:           res.Instruction.System,
			User:             res.Instruction.User,
			Temperature:      res.Params.Temperature,
			PresencePenalty:  res.Params.PresencePenalty,
			FrequencyPenalty: res.Params.FrequencyPenalty,
			MaxOutputTokens:  prompt.MaxOutputTokens,
			Seed:             res.Params.Seed,
		})
		if err != nil {
			return fmt.Errorf("text generation: %w", err)
		}
		res.Artifact.Prompt = prompt.Finalize(raw)
		if res.Artifact.Prompt == "" {
			logger.Warn().Str("raw", raw).Msg("Finalized prompt is empty")
		}
		logger.Info().Str("prompt", res.Artifact.Prompt).Msg("Prompt generated")
		return nil

	case StateRequestingImage:
		img, err := r.Image.GenerateImage(ctx, res.Artifact.Prompt)
		if err != nil {
			return fmt.Errorf("image generation: %w", err)
		}
		if len(img) == 0 {
			return fmt.Errorf("image generation: no image data returned")
		}
		res.Artifact.Image = img
		return nil

	case StatePersisting:
		return r.persist(ctx, res)

	default:
		return fmt.Errorf("no work defined for state %s", s)
	}
}

func (r *Runner) persist(ctx context.Context, res *Result) error {
	a := res.Artifact
	writes := []struct {
		key  string
		data []byte
	}{
		{ImageKey(a.Date), a.Image},
		{CurrentImageKey, a.Image},
		{PromptKey(a.Date), []byte(a.Prompt)},
		{CurrentPromptKey, []byte(a.Prompt)},
	}
	for _, w := range writes {
		if err := r.Store.Write(ctx, w.key, w.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", w.key, err)
		}
		res.Keys = append(res.Keys, w.key)
	}

	entry, err := r.ledger().Append(ctx, a.Prompt)
	if err != nil {
		return err
	}
	res.Entry = entry

	if r.Readme != nil {
		if err := r.Readme.Annotate(ctx, a.Prompt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) ledger() *ledger.Ledger {
	if r.Ledger == nil {
		r.Ledger = ledger.New(r.Store)
	}
	return r.Ledger
}

func (r *Runner) recordMetrics(res *Result, runErr error) {
	if r.Metrics == nil {
		return
	}
	outcome := "success"
	if runErr != nil {
		outcome = "failure"
	}
	metrics.New(metrics.Namespace).
		WithWriter(r.Metrics).
		Dimension("Result", outcome).
		Duration("RunLatencyMs", res.Duration).
		Metric("PromptLength", float64(len(res.Artifact.Prompt)), metrics.UnitCount).
		Metric("ImageBytes", float64(len(res.Artifact.Image)), metrics.UnitBytes).
		Property("runId", res.RunID).
		Property("state", res.State.String()).
		Property("dryRun", res.DryRun).
		Flush()
}
