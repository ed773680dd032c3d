package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResearchCommand_MissingEmail(t *testing.T) {
	binaryPath := testBinary(t)

	cmd := exec.Command(binaryPath, "research", "--company", "Example Co")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), `required flag(s) "email" not set`)
}

func TestResearchCommand_MissingAPIKey(t *testing.T) {
	binaryPath := testBinary(t)

	cmd := exec.Command(binaryPath, "research", "--email", "prospect@example.com", "--company", "Example Co")
	cmd.Env = envWithout("GEMINI_API_KEY")

	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "GEMINI_API_KEY environment variable or --api-key flag is required")
}
