package narrative

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	gotModel  string
	gotPrompt string
	resp      *genai.GenerateContentResponse
	err       error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func newTestGemini(m *fakeModels) *Gemini {
	return newGemini(m, GeminiConfig{Model: "gemini-1.5-flash"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerate_JoinsTextParts(t *testing.T) {
	m := &fakeModels{resp: textResponse("Sales will ", "grow.")}

	got, err := newTestGemini(m).Generate(context.Background(), "predict")
	require.NoError(t, err)
	assert.Equal(t, "Sales will grow.", got)
	assert.Equal(t, "gemini-1.5-flash", m.gotModel)
	assert.Equal(t, "predict", m.gotPrompt)
}

func TestGenerate_NoCandidates(t *testing.T) {
	m := &fakeModels{resp: &genai.GenerateContentResponse{}}

	_, err := newTestGemini(m).Generate(context.Background(), "predict")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestGenerate_ClientError(t *testing.T) {
	m := &fakeModels{err: errors.New("quota exceeded")}

	_, err := newTestGemini(m).Generate(context.Background(), "predict")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestResponseText_SkipsThoughts(t *testing.T) {
	resp := textResponse("answer")
	resp.Candidates[0].Content.Parts = append([]*genai.Part{{Text: "thinking...", Thought: true}}, resp.Candidates[0].Content.Parts...)

	got, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

func TestResponseText_Blocked(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}

	_, err := responseText(resp)
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.Contains(t, err.Error(), "blocked")
}
