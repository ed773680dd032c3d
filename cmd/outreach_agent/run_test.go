package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCommand_MissingEmail(t *testing.T) {
	binaryPath := testBinary(t)

	cmd := exec.Command(binaryPath, "run", "--dry-run", "--api-key", "dummy-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), `required flag(s) "email" not set`)
}

func TestRunCommand_MissingAPIKey(t *testing.T) {
	binaryPath := testBinary(t)

	cmd := exec.Command(binaryPath, "run", "--email", "prospect@example.com", "--dry-run")
	// Clear environment to ensure no API key leaks in from .env
	cmd.Env = envWithout("GEMINI_API_KEY")

	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "GEMINI_API_KEY environment variable or --api-key flag is required")
}

func TestRunCommand_SendRequiresSenderIdentity(t *testing.T) {
	binaryPath := testBinary(t)

	// No config file and no --dry-run: the command must refuse to send.
	cmd := exec.Command(binaryPath, "run", "--email", "prospect@example.com", "--api-key", "dummy-key")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "sender email is required to send")
}

func TestRunCommand_DryRunStartsPipeline(t *testing.T) {
	// A dummy API key gets past configuration; the pipeline then starts
	// and fails at the research stage when the LLM call is rejected.
	binaryPath := testBinary(t)

	cmd := exec.Command(binaryPath, "run",
		"--email", "prospect@example.com",
		"--first-name", "Pat",
		"--company", "Example Co",
		"--api-key", "dummy-key",
		"--dry-run")
	cmd.Env = envWithout("DATABASE_URL", "GOOGLE_CSE_ID")

	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "Step 1/8: Researching")
}
