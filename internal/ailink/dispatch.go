package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

const (
	defaultTimeout = 60 * time.Second
	maxTimeout     = 5 * time.Minute
)

// Service coordinates prompt loading, provider selection, and driver execution.
type Service struct {
	Providers *Registry
	Registry  prompt.Registry

	// OnRetry, when set, observes every scheduled retry.
	OnRetry func(RetryEvent)
}

// NewService builds a service from config, loading prompts from
// cfg.PromptsDir when set and from the embedded set otherwise.
func NewService(cfg Config) (*Service, error) {
	var (
		prompts prompt.Registry
		err     error
	)
	if dir := strings.TrimSpace(cfg.PromptsDir); dir != "" {
		var loaded []*prompt.Prompt
		loaded, err = prompt.LoadFromDir(dir)
		if err == nil {
			prompts, err = prompt.NewRegistry(loaded)
		}
	} else {
		prompts, err = prompt.DefaultRegistry()
	}
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return &Service{Providers: NewRegistry(cfg), Registry: prompts}, nil
}

// Dispatch renders the prompt named by req.PromptSlug and sends it to the
// resolved provider, retrying rate-limited attempts.
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResponse, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("ailink provider registry not configured")
	}
	if s.Registry == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		return nil, errors.New("prompt slug is required")
	}

	promptDef, err := s.Registry.Get(slug)
	if err != nil {
		return nil, err
	}

	for _, required := range promptDef.Config.Input.RequiredVariables {
		if val, ok := req.Variables[required]; !ok || strings.TrimSpace(val) == "" {
			return nil, fmt.Errorf("required variable %q not provided", required)
		}
	}

	for _, att := range req.Attachments {
		if !promptDef.Config.Input.AcceptsVideoType(string(att.Type)) {
			return nil, fmt.Errorf("prompt %q does not accept %s attachments", slug, att.Type)
		}
	}

	systemPrompt, userPrompt, err := renderPrompt(promptDef, req.Variables)
	if err != nil {
		return nil, err
	}

	userBlocks := make([]content.ContentBlock, 0, 1+len(req.Attachments))
	userBlocks = append(userBlocks, content.Text(userPrompt))
	userBlocks = append(userBlocks, req.Attachments...)

	messages := []content.Message{
		{Role: "system", Content: []content.ContentBlock{content.Text(systemPrompt)}},
		{Role: "user", Content: userBlocks},
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = slug
	}

	resolved, err := s.Providers.Resolve(role, promptDef, req.Model)
	if err != nil {
		return nil, err
	}

	driverReq := &driver.Request{
		Model:       resolved.Model,
		Messages:    messages,
		Temperature: resolved.Provider.Temperature,
		MaxTokens:   resolved.Provider.MaxTokens,
		PromptSlug:  promptDef.Config.Slug,
	}

	timeout := s.Providers.cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	var waited time.Duration
	notify := func(attempt int, wait time.Duration, err error) {
		waited += wait
		if s.OnRetry != nil {
			s.OnRetry(RetryEvent{Provider: resolved.ProviderID, Attempt: attempt, Wait: wait, Err: err})
		}
	}

	resp, attempts, err := retryRateLimited(ctx, s.Providers.cfg.Retry, func(attempt int) (*driver.Response, error) {
		return s.attempt(ctx, resolved, driverReq, attempt, timeout)
	}, notify)
	if err != nil {
		return nil, newDispatchError(resolved.ProviderID, attempts, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	return &DispatchResponse{
		Text:         text,
		Provider:     resolved.ProviderID,
		Model:        resolved.Model,
		Attempts:     attempts,
		Backoff:      waited,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
	}, nil
}

// attempt reads the credential, builds a driver and performs one call.
func (s *Service) attempt(ctx context.Context, resolved *ResolvedProvider, req *driver.Request, attempt int, timeout time.Duration) (*driver.Response, error) {
	drv, err := s.Providers.Driver(resolved)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := drv.Complete(ctx, req)
	driver.TraceCall(drv.Name(), req, attempt, resp, err, time.Since(start))
	return resp, err
}
