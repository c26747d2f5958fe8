// Package strategist is the action boundary: it validates user parameters,
// dispatches the mode's prompt and turns the reply, or the failure, into an
// Outcome ready for display.
package strategist

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
	"github.com/viralstrategist/viralstrategist/internal/extract"
	"github.com/viralstrategist/viralstrategist/internal/metrics"
)

// Dispatcher sends one rendered prompt to a provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, req ailink.DispatchRequest) (*ailink.DispatchResponse, error)
}

// Strategist runs actions. The zero value is not usable; set Dispatcher and Prompts.
type Strategist struct {
	Dispatcher Dispatcher
	Prompts    prompt.Registry
	Logger     *logging.Logger

	// Slugs overrides DefaultPromptSlugs per mode.
	Slugs map[Mode]string

	// Model, when set, replaces the prompt's preferred models.
	Model string

	// Now defaults to time.Now.
	Now func() time.Time
}

// New wires a strategist onto an ailink service, reporting retries to the
// logger and to telemetry.
func New(svc *ailink.Service, logger *logging.Logger) *Strategist {
	svc.OnRetry = func(ev ailink.RetryEvent) {
		metrics.RecordRetry(ev.Provider, ev.Attempt)
		if logger != nil {
			logger.Warn("Provider rate limited, retrying",
				zap.String("provider", ev.Provider),
				zap.Int("attempt", ev.Attempt),
				zap.Duration("wait", ev.Wait),
				zap.Error(ev.Err),
			)
		}
	}
	return &Strategist{Dispatcher: svc, Prompts: svc.Registry, Logger: logger}
}

// PromptSlug returns the prompt used for mode: the Slugs override, then the
// default slug if registered, then the first registered prompt for mode.
func (s *Strategist) PromptSlug(mode Mode) string {
	if slug, ok := s.Slugs[mode]; ok && slug != "" {
		return slug
	}
	slug := DefaultPromptSlugs[mode]
	if s.Prompts == nil {
		return slug
	}
	if _, err := s.Prompts.Get(slug); err == nil {
		return slug
	}
	if candidates := prompt.ForMode(s.Prompts, string(mode)); len(candidates) > 0 {
		return candidates[0].Config.Slug
	}
	return slug
}

// Run validates params and performs one dispatch-then-extract cycle.
//
// The returned error is non-nil only for invalid input or missing wiring.
// Provider failures are reported through the Outcome status and message.
func (s *Strategist) Run(ctx context.Context, mode Mode, params Params) (*Outcome, error) {
	if s == nil || s.Dispatcher == nil || s.Prompts == nil {
		return nil, fmt.Errorf("strategist not configured")
	}
	params = params.WithDefaults()
	if err := Validate(mode, params); err != nil {
		return nil, err
	}

	slug := s.PromptSlug(mode)
	def, err := s.Prompts.Get(slug)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	start := now()
	out := &Outcome{ID: uuid.NewString(), Mode: mode, CreatedAt: start}

	resp, err := s.Dispatcher.Dispatch(ctx, ailink.DispatchRequest{
		PromptSlug:  slug,
		Variables:   params.variables(),
		Attachments: params.attachments(mode),
		Model:       s.Model,
	})
	out.Duration = now().Sub(start)

	if err != nil {
		out.Status, out.Message = failureDisplay(err, def.Config.EmptyMessage)
		out.Raw = out.Message
		s.finish(out, err)
		return out, nil
	}

	out.Raw = resp.Text
	out.Provider = resp.Provider
	out.Model = resp.Model
	out.Attempts = resp.Attempts
	out.Status = StatusOK
	populate(out, def.Config.Extraction)
	if out.ItemCount() == 0 {
		out.Status = StatusFallback
	}
	s.finish(out, nil)
	return out, nil
}

// populate runs the schema over out.Raw, filling the field matching the
// schema kind. Failure markers in Raw yield empty values.
func populate(out *Outcome, schema extract.Schema) {
	out.Fields = schema.FieldNames()
	switch schema.Kind {
	case extract.KindBlocks:
		out.Ideas = extract.ExtractBlocks(schema, out.Raw)
	case extract.KindHashtags:
		tags := extract.ExtractHashtags(schema, out.Raw)
		out.Hashtags = &tags
	default:
		out.Record = extract.ExtractRecord(schema, out.Raw)
	}
}

func (s *Strategist) finish(out *Outcome, err error) {
	metrics.RecordDispatch(string(out.Mode), string(out.Status), out.Duration)
	metrics.RecordExtracted(string(out.Mode), out.ItemCount())
	if out.Status == StatusRateLimited {
		metrics.RecordActionRejected(string(out.Mode), metrics.RejectRateLimited)
	}

	if s.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("id", out.ID),
		zap.String("mode", string(out.Mode)),
		zap.String("status", string(out.Status)),
		zap.String("provider", out.Provider),
		zap.Int("attempts", out.Attempts),
		zap.Int("items", out.ItemCount()),
		zap.Duration("duration", out.Duration),
	}
	if err != nil {
		s.Logger.Warn("Action failed", append(fields, zap.Error(err))...)
		return
	}
	s.Logger.Info("Action completed", fields...)
}
