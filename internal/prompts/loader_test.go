package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("extraction.json", "extract-job-requirements")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobText}}")
	assert.Contains(t, prompt, "must_have")
}

func TestGet_UnknownKey(t *testing.T) {
	ClearCache()

	_, err := Get("extraction.json", "no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-prompt")
}

func TestGet_UnknownFile(t *testing.T) {
	ClearCache()

	_, err := Get("missing.json", "anything")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("extraction.json", "no-such-prompt")
	})
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	template := "Role: {{.RoleTitle}} at {{.Company}}"
	result := Format(template, map[string]string{
		"RoleTitle": "Backend Engineer",
		"Company":   "Acme",
	})
	assert.Equal(t, "Role: Backend Engineer at Acme", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	template := "Hello {{.Name}}"
	result := Format(template, map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}", result)
}

func TestBuild_LoadsAndFormats(t *testing.T) {
	ClearCache()

	prompt, err := Build("interview.json", "generate-questions", map[string]string{
		"RoleTitle": "Data Engineer",
		"Company":   "Initech",
		"Gaps":      "1. Docker (must_have)",
		"Language":  "English",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Data Engineer at Initech")
	assert.False(t, strings.Contains(prompt, "{{."), "all placeholders should be substituted")
}

func TestList_ReturnsAllKeys(t *testing.T) {
	ClearCache()

	keys, err := List("synthesis.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "enrich-experience")
	assert.Contains(t, keys, "generate-project-entry")
	assert.Contains(t, keys, "prioritize-skills")
	assert.Contains(t, keys, "generate-summary")
}

func TestGet_CachesAcrossCalls(t *testing.T) {
	ClearCache()

	first, err := Get("classify.json", "classify-answer")
	require.NoError(t, err)
	second, err := Get("classify.json", "classify-answer")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
