package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
)

func TestCompleteRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", " ").Complete(context.Background(), &driver.Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestCompleteRequiresModel(t *testing.T) {
	_, err := NewClient("", "k").Complete(context.Background(), &driver.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestConvertMessagesKeepsOrderAndSystem(t *testing.T) {
	video := []byte{0x00, 0x01, 0x02}
	system, parts, err := convertMessages([]content.Message{
		{Role: "system", Content: []content.ContentBlock{content.Text("Du bist ein TikTok Stratege.")}},
		{Role: "user", Content: []content.ContentBlock{
			content.Text("Analysiere das Video."),
			content.Inline(content.ContentTypeMP4, video),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Du bist ein TikTok Stratege.", system)
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("Analysiere das Video."), parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "video/mp4", Data: video}, parts[1])
}

func TestConvertMessagesRejectsEmpty(t *testing.T) {
	_, _, err := convertMessages(nil)
	require.Error(t, err)

	_, _, err = convertMessages([]content.Message{{Role: "user", Content: []content.ContentBlock{{Type: "video/mp4"}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty video/mp4 attachment")
}

func TestToDriverResponse(t *testing.T) {
	resp := toDriverResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text("Teil 1"), genai.Text("Teil 2")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5, TotalTokenCount: 15},
	})
	assert.Equal(t, "Teil 1\nTeil 2", resp.Text())
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	empty := toDriverResponse(&genai.GenerateContentResponse{})
	assert.Equal(t, "", empty.Text())
}

func TestMapErrorPreservesStatus(t *testing.T) {
	err := mapError(&googleapi.Error{Code: http.StatusTooManyRequests, Message: "Resource has been exhausted (e.g. check quota)."})

	var perr *driver.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Equal(t, "gemini", perr.Provider)
	assert.Contains(t, perr.Error(), "status 429")
}

func TestMapErrorWrapsTransportFailures(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := mapError(base)
	assert.ErrorIs(t, err, base)

	var perr *driver.ProviderError
	assert.False(t, errors.As(err, &perr))
}
