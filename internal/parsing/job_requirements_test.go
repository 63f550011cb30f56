package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
)

// fakeClient returns canned responses for testing extraction without the API
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
	return &llm.Result{Text: f.response, Usage: llm.Usage{InputTokens: 100, OutputTokens: 50}}, nil
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

func TestExtractJobRequirements_ParsesLLMResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"company": "Acme",
		"role_title": "Backend Engineer",
		"must_have": ["Go", "PostgreSQL", "Docker"],
		"nice_to_have": ["Kubernetes"],
		"soft_skills": ["Communication"],
		"experience_years": 3,
		"languages": ["English"]
	}`}

	reqs, err := ExtractJobRequirements(context.Background(), client, "some job posting")
	require.NoError(t, err)

	assert.Equal(t, "Acme", reqs.Company)
	assert.Equal(t, "Backend Engineer", reqs.RoleTitle)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, reqs.MustHave)
	assert.Equal(t, []string{"Kubernetes"}, reqs.NiceToHave)
	require.NotNil(t, reqs.ExperienceYears)
	assert.Equal(t, 3, *reqs.ExperienceYears)
}

func TestExtractJobRequirements_MustHaveWinsOverNiceToHave(t *testing.T) {
	client := &fakeClient{response: `{
		"company": "Acme",
		"role_title": "Engineer",
		"must_have": ["Docker"],
		"nice_to_have": ["docker", "Kubernetes"],
		"soft_skills": []
	}`}

	reqs, err := ExtractJobRequirements(context.Background(), client, "posting")
	require.NoError(t, err)

	assert.Equal(t, []string{"Docker"}, reqs.MustHave)
	assert.Equal(t, []string{"Kubernetes"}, reqs.NiceToHave, "duplicate listing should stay must-have only")
}

func TestExtractJobRequirements_DeduplicatesNormalizedVariants(t *testing.T) {
	client := &fakeClient{response: `{
		"company": "",
		"role_title": "",
		"must_have": ["Golang", "Go", "Python 3", "Python"],
		"nice_to_have": [],
		"soft_skills": []
	}`}

	reqs, err := ExtractJobRequirements(context.Background(), client, "posting")
	require.NoError(t, err)

	assert.Equal(t, []string{"Golang", "Python 3"}, reqs.MustHave)
}

func TestExtractJobRequirements_EmptyText(t *testing.T) {
	_, err := ExtractJobRequirements(context.Background(), &fakeClient{}, "   ")
	require.Error(t, err)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestExtractJobRequirements_BadJSON(t *testing.T) {
	client := &fakeClient{response: "this is not json"}

	_, err := ExtractJobRequirements(context.Background(), client, "posting")
	require.Error(t, err)

	var pErr *ParseError
	assert.ErrorAs(t, err, &pErr)
}

func TestExtractJobRequirements_FallbackWithoutClient(t *testing.T) {
	jobText := `We are hiring a platform engineer.
- Docker (required)
- AWS, mandatory for this role
- Kubernetes (nice to have)
At least 5 years of experience.`

	reqs, err := ExtractJobRequirements(context.Background(), nil, jobText)
	require.NoError(t, err)

	assert.Contains(t, reqs.MustHave, "Docker")
	assert.Contains(t, reqs.MustHave, "AWS")
	assert.Contains(t, reqs.NiceToHave, "Kubernetes")
	require.NotNil(t, reqs.ExperienceYears)
	assert.Equal(t, 5, *reqs.ExperienceYears)
}

func TestExtractJobRequirements_FallbackSpanishCues(t *testing.T) {
	jobText := `Buscamos desarrollador backend.
- Python (excluyente)
- Django
Mínimo 3 años de experiencia.`

	reqs, err := ExtractJobRequirements(context.Background(), nil, jobText)
	require.NoError(t, err)

	assert.Contains(t, reqs.MustHave, "Python")
	assert.Contains(t, reqs.NiceToHave, "Django")
	require.NotNil(t, reqs.ExperienceYears)
	assert.Equal(t, 3, *reqs.ExperienceYears)
}
