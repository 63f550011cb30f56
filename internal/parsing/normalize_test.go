package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkill_LowercasesAndTrims(t *testing.T) {
	assert.Equal(t, "python", NormalizeSkill("  Python  "))
	assert.Equal(t, "docker", NormalizeSkill("Docker"))
}

func TestNormalizeSkill_StripsVersionSuffixes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Python 3", "python"},
		{"Python 3.x", "python"},
		{"Java 11", "java"},
		{"Spring 5.2", "spring"},
		{"Vue 3", "vue"},
		{"EC2", "ec2"}, // trailing digit without whitespace is part of the name
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSkill(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeSkill_ResolvesAliases(t *testing.T) {
	assert.Equal(t, "go", NormalizeSkill("Golang"))
	assert.Equal(t, "javascript", NormalizeSkill("JS"))
	assert.Equal(t, "kubernetes", NormalizeSkill("K8s"))
	assert.Equal(t, "node.js", NormalizeSkill("NodeJS"))
	assert.Equal(t, "aws", NormalizeSkill("Amazon Web Services"))
}

func TestNormalizeSkill_Idempotent(t *testing.T) {
	inputs := []string{"Python 3.x", "Golang", "K8s", "Node JS", "  AWS  ", "ci cd", "ec2", ""}
	for _, input := range inputs {
		once := NormalizeSkill(input)
		twice := NormalizeSkill(once)
		assert.Equal(t, once, twice, "normalize should be idempotent for %q", input)
	}
}

func TestNormalizeSkill_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeSkill(""))
	assert.Equal(t, "", NormalizeSkill("   "))
}

func TestNormalizeSkillSet_DeduplicatesVariants(t *testing.T) {
	result := NormalizeSkillSet([]string{"Golang", "Go", "go lang", "Python", "python 3"})
	assert.Equal(t, []string{"go", "python"}, result)
}

func TestNormalizeSkillSet_PreservesOrder(t *testing.T) {
	result := NormalizeSkillSet([]string{"Docker", "AWS", "Kubernetes"})
	assert.Equal(t, []string{"docker", "aws", "kubernetes"}, result)
}
