package parsing

import (
	"regexp"
	"strings"
)

// skillAliases maps common variant spellings to a canonical comparison token.
// Keys and values are lowercase; values must themselves be canonical.
var skillAliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"js":                  "javascript",
	"node":                "node.js",
	"nodejs":              "node.js",
	"node js":             "node.js",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"reactjs":             "react",
	"react.js":            "react",
	"vuejs":               "vue",
	"vue.js":              "vue",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"py":                  "python",
	"python3":             "python",
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"ci cd":               "ci/cd",
	"cicd":                "ci/cd",
}

// versionSuffix matches a whitespace-separated trailing version marker,
// e.g. "python 3", "java 11", "vue 3.x", "spring 5.2".
var versionSuffix = regexp.MustCompile(`\s+v?\d+(\.\d+)*(\.x)?$`)

// NormalizeSkill reduces a skill name to its canonical comparison form:
// lowercase, trimmed, version suffix stripped, variant aliases resolved.
// The function is idempotent.
func NormalizeSkill(skill string) string {
	normalized := strings.ToLower(strings.TrimSpace(skill))
	if normalized == "" {
		return ""
	}

	normalized = versionSuffix.ReplaceAllString(normalized, "")
	normalized = strings.TrimSpace(normalized)

	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeSkillSet normalizes and deduplicates a list of skill names,
// preserving first-occurrence order.
func NormalizeSkillSet(skills []string) []string {
	normalized := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))

	for _, skill := range skills {
		n := NormalizeSkill(skill)
		if n == "" || seen[n] {
			continue
		}
		normalized = append(normalized, n)
		seen[n] = true
	}
	return normalized
}
