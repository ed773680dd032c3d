package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAgentFlagSet registers agent flags on a throwaway command and parses
// args against it, so resolve can be tested without executing a command.
func newAgentFlagSet(t *testing.T, args ...string) (*agentFlags, *cobra.Command) {
	t.Helper()
	f := &agentFlags{}
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return f, cmd
}

func TestAgentFlags_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SMTP_PASSWORD", "")

	f, cmd := newAgentFlagSet(t, "--dry-run")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 50, cfg.DailySendLimit)
	assert.Equal(t, 3.0, cfg.MinQualityScore)
	assert.Equal(t, 5, cfg.SendDelaySeconds)
	assert.Equal(t, 2, cfg.ScrapeDelaySeconds)
	assert.Equal(t, 5, cfg.MaxResearchPages)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.DryRun)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestAgentFlags_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	f, cmd := newAgentFlagSet(t, "--dry-run")
	_, err := f.resolve(cmd)

	assert.ErrorContains(t, err, "GEMINI_API_KEY environment variable or --api-key flag is required")
}

func TestAgentFlags_ConfigFileWithOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SMTP_PASSWORD", "hunter2")
	t.Setenv("DATABASE_URL", "")

	configPath := filepath.Join(t.TempDir(), "config.json")
	cfgJSON := `{
  "daily_send_limit": 10,
  "min_quality_score": 2.5,
  "sender": {"name": "Jordan Fox", "email": "jordan@agency.example"},
  "smtp": {"host": "mail.agency.example", "port": 465, "username": "jordan@agency.example"}
}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfgJSON), 0644))

	f, cmd := newAgentFlagSet(t, "--config", configPath, "--daily-limit", "5")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	// Flag beats file, file beats defaults.
	assert.Equal(t, 5, cfg.DailySendLimit)
	assert.Equal(t, 2.5, cfg.MinQualityScore)
	assert.Equal(t, "mail.agency.example", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "hunter2", cfg.SMTP.Password)
	assert.Equal(t, "Jordan Fox", cfg.Sender.Name)
}

func TestAgentFlags_SendRequiresSenderIdentity(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SMTP_PASSWORD", "")

	f, cmd := newAgentFlagSet(t)
	_, err := f.resolve(cmd)

	assert.ErrorContains(t, err, "sender email is required to send")
}

func TestAgentFlags_SendRequiresSMTPCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SMTP_PASSWORD", "")

	configPath := filepath.Join(t.TempDir(), "config.json")
	cfgJSON := `{"sender": {"email": "jordan@agency.example"}}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfgJSON), 0644))

	f, cmd := newAgentFlagSet(t, "--config", configPath)
	_, err := f.resolve(cmd)

	assert.ErrorContains(t, err, "SMTP credentials are required to send")
}

func TestAgentFlags_InvalidConfigRejected(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"min_quality_score": 9}`), 0644))

	f, cmd := newAgentFlagSet(t, "--config", configPath, "--dry-run")
	_, err := f.resolve(cmd)

	assert.ErrorContains(t, err, "min_quality_score")
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	key, err := resolveAPIKey("flag-key")
	require.NoError(t, err)
	assert.Equal(t, "flag-key", key)

	key, err = resolveAPIKey("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	t.Setenv("GEMINI_API_KEY", "")
	_, err = resolveAPIKey("")
	assert.Error(t, err)
}

func TestProspectFlags(t *testing.T) {
	f := &prospectFlags{}
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--first-name", "Pat", "--last-name", "Lee",
		"--email", "pat@example.com", "--company", "Example Co",
		"--website", "https://example.com",
	}))

	p := f.prospect()
	assert.Equal(t, "Pat", p.FirstName)
	assert.Equal(t, "Lee", p.LastName)
	assert.Equal(t, "pat@example.com", p.Email)
	assert.Equal(t, "Example Co", p.Company)
	assert.Equal(t, "https://example.com", p.WebsiteURL)
	assert.NoError(t, p.Validate())
}
