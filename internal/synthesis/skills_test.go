package synthesis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/types"
)

func testGroups() []types.SkillGroup {
	return []types.SkillGroup{
		{Label: "Languages", Skills: []string{"Spanish", "English"}},
		{Label: "Tools", Skills: []string{"Jira", "Git"}},
		{Label: "Backend", Skills: []string{"Python", "Docker", "PostgreSQL"}},
	}
}

func TestAddConfirmedSkills_AppendsMissingSkills(t *testing.T) {
	profile := &types.CandidateProfile{
		Skills: []types.SkillGroup{{Label: "Backend", Skills: []string{"Python"}}},
	}

	AddConfirmedSkills(profile, []types.ClassifiedAnswer{
		{Skill: "Terraform", Classification: types.ClassWorkExperience},
		{Skill: "Django", Classification: types.ClassProject},
		{Skill: "Kubernetes", Classification: types.ClassNotApplicable},
	})

	require.Len(t, profile.Skills, 2)
	assert.Equal(t, "Additional Skills", profile.Skills[1].Label)
	assert.Equal(t, []string{"Terraform", "Django"}, profile.Skills[1].Skills)
}

func TestAddConfirmedSkills_SkipsSkillsAlreadyPresent(t *testing.T) {
	profile := &types.CandidateProfile{
		Skills: []types.SkillGroup{{Label: "Backend", Skills: []string{"Golang"}}},
	}

	// "Go" and "Golang" normalize to the same skill
	AddConfirmedSkills(profile, []types.ClassifiedAnswer{
		{Skill: "Go", Classification: types.ClassWorkExperience},
	})

	assert.Len(t, profile.Skills, 1)
}

func TestPrioritizeSkills_MustHaveGroupsFirstLanguagesLast(t *testing.T) {
	reqs := &types.JobRequirements{
		MustHave:   []string{"Docker", "Git"},
		NiceToHave: []string{"PostgreSQL"},
	}

	ordered := PrioritizeSkills(context.Background(), nil, testGroups(), reqs)

	require.Len(t, ordered, 3)
	assert.Equal(t, "Tools", ordered[0].Label)
	assert.Equal(t, "Backend", ordered[1].Label)
	assert.Equal(t, "Languages", ordered[2].Label)
}

func TestPrioritizeSkills_MustHaveSkillsLeadWithinGroup(t *testing.T) {
	reqs := &types.JobRequirements{
		MustHave:   []string{"Docker"},
		NiceToHave: []string{"PostgreSQL"},
	}

	ordered := PrioritizeSkills(context.Background(), nil, testGroups(), reqs)

	var backend types.SkillGroup
	for _, group := range ordered {
		if group.Label == "Backend" {
			backend = group
		}
	}
	assert.Equal(t, []string{"Docker", "PostgreSQL", "Python"}, backend.Skills)
}

func TestPrioritizeSkills_DoesNotMutateInput(t *testing.T) {
	groups := testGroups()
	reqs := &types.JobRequirements{MustHave: []string{"Docker"}}

	PrioritizeSkills(context.Background(), nil, groups, reqs)

	assert.Equal(t, testGroups(), groups)
}

func TestPrioritizeSkills_AcceptsRelabelingWithSameSkills(t *testing.T) {
	client := &fakeClient{response: `[
		{"label": "DevOps & Delivery", "details": "Docker, Git, Jira"},
		{"label": "Engineering", "details": "Python, PostgreSQL"},
		{"label": "Languages", "details": "Spanish, English"}
	]`}
	reqs := &types.JobRequirements{MustHave: []string{"Docker"}}

	ordered := PrioritizeSkills(context.Background(), client, testGroups(), reqs)

	require.Len(t, ordered, 3)
	assert.Equal(t, "DevOps & Delivery", ordered[0].Label)
	assert.Equal(t, "Languages", ordered[2].Label)
}

func TestPrioritizeSkills_RejectsRelabelingThatDropsSkills(t *testing.T) {
	client := &fakeClient{response: `[
		{"label": "Core", "details": "Docker, Python"}
	]`}
	reqs := &types.JobRequirements{MustHave: []string{"Docker"}}

	ordered := PrioritizeSkills(context.Background(), client, testGroups(), reqs)

	// Deterministic ordering with the original labels wins
	require.Len(t, ordered, 3)
	assert.Equal(t, "Backend", ordered[0].Label)
	assert.Equal(t, "Languages", ordered[2].Label)
}

func TestPrioritizeSkills_RejectsRelabelingThatInventsSkills(t *testing.T) {
	client := &fakeClient{response: `[
		{"label": "Backend", "details": "Python, Docker, PostgreSQL, Rust"},
		{"label": "Tools", "details": "Jira, Git"},
		{"label": "Languages", "details": "Spanish, English"}
	]`}
	reqs := &types.JobRequirements{}

	ordered := PrioritizeSkills(context.Background(), client, testGroups(), reqs)

	for _, group := range ordered {
		assert.NotContains(t, group.Skills, "Rust")
	}
}

func TestPrioritizeSkills_ForcesLanguagesLastAfterRelabeling(t *testing.T) {
	client := &fakeClient{response: `[
		{"label": "Idiomas", "details": "Spanish, English"},
		{"label": "Tools", "details": "Jira, Git"},
		{"label": "Backend", "details": "Python, Docker, PostgreSQL"}
	]`}
	reqs := &types.JobRequirements{}

	ordered := PrioritizeSkills(context.Background(), client, testGroups(), reqs)

	require.Len(t, ordered, 3)
	assert.Equal(t, "Idiomas", ordered[2].Label)
}

func TestGenerateSummary_TailorsWithClient(t *testing.T) {
	client := &fakeClient{response: `"Backend developer with four years of Python and Docker experience."`}
	profile := &types.CandidateProfile{Summary: "Developer."}

	summary := GenerateSummary(context.Background(), client, profile, &types.JobRequirements{RoleTitle: "Backend Developer"})

	assert.Equal(t, "Backend developer with four years of Python and Docker experience.", summary)
}

func TestGenerateSummary_KeepsExistingOnFailure(t *testing.T) {
	client := &fakeClient{err: assert.AnError}
	profile := &types.CandidateProfile{Summary: "Developer."}

	summary := GenerateSummary(context.Background(), client, profile, &types.JobRequirements{})

	assert.Equal(t, "Developer.", summary)
}

func TestGenerateSummary_NilClientKeepsExisting(t *testing.T) {
	profile := &types.CandidateProfile{Summary: "Developer."}

	summary := GenerateSummary(context.Background(), nil, profile, &types.JobRequirements{})

	assert.Equal(t, "Developer.", summary)
}
