package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/types"
)

func validDocument() *types.Document {
	return &types.Document{
		Name:  "Maria Gomez",
		Email: "maria@example.com",
		Phone: "+5491155551234",
		Experience: []types.ExperienceEntry{
			{Employer: "Globant", Title: "Developer", Highlights: []string{"Built APIs"}},
		},
		Skills: []types.SkillGroup{
			{Label: "Backend", Skills: []string{"Python"}},
		},
	}
}

func TestValidateDocument_Valid(t *testing.T) {
	assert.NoError(t, ValidateDocument(validDocument()))
}

func TestValidateDocument_MissingName(t *testing.T) {
	doc := validDocument()
	doc.Name = ""

	err := ValidateDocument(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidateDocument_BadPhonePattern(t *testing.T) {
	doc := validDocument()
	doc.Phone = "011 5555-1234"

	err := ValidateDocument(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	found := false
	for _, fieldErr := range validationErr.Errors {
		if fieldErr.Field == "phone" {
			found = true
		}
	}
	assert.True(t, found, "expected a violation on the phone field, got %v", validationErr.Errors)
}

func TestValidateDocument_CollectsAllViolations(t *testing.T) {
	doc := validDocument()
	doc.Name = ""
	doc.Phone = "not a phone"
	doc.Skills = []types.SkillGroup{{Label: "", Skills: []string{"Python"}}}

	err := ValidateDocument(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.GreaterOrEqual(t, len(validationErr.Errors), 3)
}

func TestValidateDocument_EmptySkillGroupRejected(t *testing.T) {
	doc := validDocument()
	doc.Skills = []types.SkillGroup{{Label: "Backend", Skills: []string{}}}

	err := ValidateDocument(doc)
	require.Error(t, err)
}

func TestValidateDocument_OptionalSectionsMayBeAbsent(t *testing.T) {
	doc := validDocument()
	doc.Email = ""
	doc.Phone = ""
	doc.Location = ""
	doc.Summary = ""
	doc.Projects = nil
	doc.Education = nil

	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateJSONString_InvalidSchemaContent(t *testing.T) {
	err := ValidateJSONString("{not json", `{"name": "x"}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
