package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dddTech2/CV-CREATOR/internal/interview"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "analyze", "history", "usage"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestPromptAnswers(t *testing.T) {
	in, inWriter, err := os.Pipe()
	require.NoError(t, err)
	out, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer out.Close()

	_, err = inWriter.WriteString("skip\nI used Docker at Globant\n\n\n")
	require.NoError(t, err)
	require.NoError(t, inWriter.Close())

	questions := []interview.Question{
		{ID: "q1", Text: "Kubernetes?"},
		{ID: "q2", Text: "Docker?"},
		{ID: "q3", Text: "AWS?", PreFill: "Managed AWS at Globant"},
		{ID: "q4", Text: "Terraform?"},
	}

	responses, err := promptAnswers(in, out)(context.Background(), 1, questions)
	require.NoError(t, err)
	require.Len(t, responses, 4)

	assert.True(t, responses[0].Skip, "typed skip")
	assert.Equal(t, "I used Docker at Globant", responses[1].Answer)
	assert.Equal(t, "Managed AWS at Globant", responses[2].Answer, "empty line confirms the remembered answer")
	assert.True(t, responses[3].Skip, "empty line without a remembered answer skips")
}
