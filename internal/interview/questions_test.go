package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (*llm.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Text: f.response}, nil
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                    { return nil }

func TestGenerateQuestionTexts_UsesLLMOutput(t *testing.T) {
	client := &fakeClient{response: "1. Have you deployed with Docker in production?\n2. How much AWS experience do you have?"}
	gaps := []types.Gap{mustGap("Docker"), mustGap("AWS")}

	texts := GenerateQuestionTexts(context.Background(), client, testReqs(), gaps, "en")
	require.Len(t, texts, 2)
	assert.Equal(t, "Have you deployed with Docker in production?", texts[0])
	assert.Equal(t, "How much AWS experience do you have?", texts[1])
}

func TestGenerateQuestionTexts_NilClientFallsBackToTemplates(t *testing.T) {
	gaps := []types.Gap{mustGap("Docker")}

	texts := GenerateQuestionTexts(context.Background(), nil, testReqs(), gaps, "en")
	require.Len(t, texts, 1)
	assert.Equal(t, "The role requires Docker; do you have experience with it? Tell me where and how you used it.", texts[0])
}

func TestGenerateQuestionTexts_ErrorFallsBackToTemplates(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	gaps := []types.Gap{mustGap("Docker"), mustGap("AWS")}

	texts := GenerateQuestionTexts(context.Background(), client, testReqs(), gaps, "en")
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Docker")
	assert.Contains(t, texts[1], "AWS")
}

func TestGenerateQuestionTexts_CountMismatchFallsBack(t *testing.T) {
	client := &fakeClient{response: "1. Only one question came back"}
	gaps := []types.Gap{mustGap("Docker"), mustGap("AWS")}

	texts := GenerateQuestionTexts(context.Background(), client, testReqs(), gaps, "en")
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "The role requires Docker")
}

func TestGenerateQuestionTexts_SpanishTemplates(t *testing.T) {
	gaps := []types.Gap{mustGap("Python")}

	texts := GenerateQuestionTexts(context.Background(), nil, testReqs(), gaps, "es")
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "La vacante requiere Python")
}

func TestSkipSentinel_PerLanguage(t *testing.T) {
	assert.Equal(t, "I have no experience with this.", SkipSentinel("en"))
	assert.Equal(t, "No tengo experiencia en esto.", SkipSentinel("es"))
	assert.Equal(t, "I have no experience with this.", SkipSentinel("fr"), "unknown language falls back to English")
}

func TestParseNumberedLines(t *testing.T) {
	text := "Here are the questions:\n1. First?\n2) Second?\nnot numbered\n3. Third?"
	lines := parseNumberedLines(text)
	assert.Equal(t, []string{"First?", "Second?", "Third?"}, lines)
}
