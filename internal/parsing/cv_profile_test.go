package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidateProfile_ParsesLLMResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"name": "Maria Gomez",
		"email": "maria@example.com",
		"phone": "+573001234567",
		"location": "Bogota",
		"summary": "Backend developer.",
		"experience": [
			{"employer": "Globant", "title": "Developer", "start_date": "2021-03", "end_date": "Present", "highlights": ["Built APIs", "  "]}
		],
		"education": [
			{"institution": "Universidad Nacional", "degree": "BSc", "area": "Systems Engineering"}
		],
		"skills": [
			{"label": "Backend", "skills": ["Python", "Django", ""]},
			{"label": "Empty", "skills": []}
		]
	}`}

	profile, err := ExtractCandidateProfile(context.Background(), client, "raw cv text")
	require.NoError(t, err)

	assert.Equal(t, "Maria Gomez", profile.Name)
	assert.Equal(t, "raw cv text", profile.RawText)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, []string{"Built APIs"}, profile.Experience[0].Highlights, "blank highlights dropped")
	require.Len(t, profile.Skills, 1, "empty skill groups dropped")
	assert.Equal(t, []string{"Python", "Django"}, profile.Skills[0].Skills)
}

func TestExtractCandidateProfile_RequiresName(t *testing.T) {
	client := &fakeClient{response: `{"name": "", "experience": [], "education": [], "skills": []}`}

	_, err := ExtractCandidateProfile(context.Background(), client, "cv")
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
}

func TestExtractCandidateProfile_RequiresClient(t *testing.T) {
	_, err := ExtractCandidateProfile(context.Background(), nil, "cv")
	require.Error(t, err)

	var aErr *APICallError
	assert.ErrorAs(t, err, &aErr)
}

func TestExtractCandidateProfile_DropsEmployerlessEntries(t *testing.T) {
	client := &fakeClient{response: `{
		"name": "Juan",
		"experience": [
			{"employer": "  ", "title": "Ghost", "highlights": []},
			{"employer": "Initech", "title": "Engineer", "highlights": ["Did things"]}
		],
		"education": [],
		"skills": []
	}`}

	profile, err := ExtractCandidateProfile(context.Background(), client, "cv")
	require.NoError(t, err)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, "Initech", profile.Experience[0].Employer)
}
