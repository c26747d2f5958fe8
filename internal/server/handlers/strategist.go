package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/ailink/encode"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
	apperrors "github.com/viralstrategist/viralstrategist/internal/errors"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// DefaultMaxVideoBytes caps decoded uploads when no limit is configured.
const DefaultMaxVideoBytes int64 = 64 << 20

// ActionSession is satisfied by *strategist.Session.
type ActionSession interface {
	Run(ctx context.Context, mode strategist.Mode, params strategist.Params) (*strategist.Outcome, error)
	Current() (*strategist.Outcome, bool)
	Clear()
}

// StrategistHandler serves the action, result and catalog endpoints.
type StrategistHandler struct {
	Session       ActionSession
	Prompts       prompt.Registry
	MaxVideoBytes int64
}

// ActionRequest is the JSON body accepted by the action endpoints. Every
// field is optional at the transport level; per-mode requirements are
// checked by the strategist.
type ActionRequest struct {
	Niche       string `json:"niche"`
	Region      string `json:"region"`
	Goal        string `json:"goal"`
	Mood        string `json:"mood"`
	Topic       string `json:"topic"`
	Visuals     string `json:"visuals"`
	VideoBase64 string `json:"video_base64"`
	VideoType   string `json:"video_type"`
}

// PromptInfo describes a registered prompt.
type PromptInfo struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Version      string   `json:"version,omitempty"`
	Mode         string   `json:"mode"`
	Required     []string `json:"required_variables,omitempty"`
	Optional     []string `json:"optional_variables,omitempty"`
	AcceptsVideo bool     `json:"accepts_video"`
}

// Action runs mode with the decoded request and writes the Outcome. Provider
// failures are part of the Outcome, so they still answer 200.
func (h *StrategistHandler) Action(mode strategist.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := h.decodeParams(w, r)
		if err != nil {
			respondWithError(w, r, err)
			return
		}

		out, err := h.Session.Run(r.Context(), mode, params)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetResult returns the current Outcome.
func (h *StrategistHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	out, ok := h.Session.Current()
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("no result available"))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ClearResult drops the current Outcome, as on a mode switch.
func (h *StrategistHandler) ClearResult(w http.ResponseWriter, r *http.Request) {
	h.Session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Options returns the selectable niches, goals, moods and regions.
func (h *StrategistHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, strategist.DefaultOptions)
}

// ListPrompts returns metadata for every registered prompt.
func (h *StrategistHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	infos := []PromptInfo{}
	if h.Prompts != nil {
		for _, p := range h.Prompts.List() {
			cfg := p.Config
			infos = append(infos, PromptInfo{
				Slug:         cfg.Slug,
				Name:         cfg.Name,
				Description:  cfg.Description,
				Version:      cfg.Version,
				Mode:         cfg.Mode,
				Required:     cfg.Input.RequiredVariables,
				Optional:     cfg.Input.OptionalVariables,
				AcceptsVideo: cfg.Input.AcceptsVideo,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": infos})
}

func (h *StrategistHandler) maxVideoBytes() int64 {
	if h.MaxVideoBytes > 0 {
		return h.MaxVideoBytes
	}
	return DefaultMaxVideoBytes
}

// decodeParams reads the JSON body. The body limit allows for base64
// expansion of the largest accepted video plus the text fields.
func (h *StrategistHandler) decodeParams(w http.ResponseWriter, r *http.Request) (strategist.Params, error) {
	maxVideo := h.maxVideoBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxVideo/3*4+64<<10)

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return strategist.Params{}, err
		}
		return strategist.Params{}, apperrors.WrapInvalidInput(r.Context(), err, "request body is not valid JSON")
	}

	params := strategist.Params{
		Niche:     req.Niche,
		Region:    req.Region,
		Goal:      req.Goal,
		Mood:      req.Mood,
		Topic:     req.Topic,
		Visuals:   req.Visuals,
		VideoType: strings.TrimSpace(req.VideoType),
	}

	if strings.TrimSpace(req.VideoBase64) != "" {
		mediaType, data, err := encode.DecodeDataURL(req.VideoBase64)
		if err != nil {
			return strategist.Params{}, apperrors.WrapInvalidInput(r.Context(), err, "video_base64 is not valid base64")
		}
		if int64(len(data)) > maxVideo {
			return strategist.Params{}, apperrors.NewPayloadTooLargeError("video exceeds the upload limit")
		}
		params.Video = data
		if params.VideoType == "" {
			params.VideoType = mediaType
		}
	}

	return params, nil
}
