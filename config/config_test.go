package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"callward/event"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
[log]
level = "debug"

[database]
path = "/tmp/callward-db"

[device]
name = "Phone"

[filter]
triggers = ["in_sms", "missed_call"]

[relay]
recipient = "me@example.com"
rate_per_minute = 10
burst = 5

[remote]
enabled = true
poll_interval = "2m"
allowed_senders = ["me@example.com"]
notify_user = true
allow_sms_send = true

[bridge]
mail_path = "/usr/local/bin/callward-mail"
sms_path = "/usr/local/bin/callward-sms"
notify_path = "/usr/local/bin/callward-notify"

[metrics]
listen = ":9109"
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, defaultsUsed, err := Load(path, false)
	require.NoError(t, err)
	require.False(t, defaultsUsed)

	require.Equal(t, DebugLevel, cfg.Log.Level)
	require.Equal(t, "Phone", cfg.Device.Name)
	require.Equal(t, []event.Trigger{event.TriggerInSMS, event.TriggerMissedCall}, cfg.Filter.Triggers)
	require.Equal(t, "me@example.com", cfg.Relay.Recipient)
	require.Equal(t, 2*time.Minute, cfg.Remote.PollInterval)
	require.True(t, cfg.Remote.AllowSMSSend)
	require.Equal(t, ":9109", cfg.Metrics.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

// The internal defaults must be a runnable configuration on their own:
// no relay recipient means relaying is off, not a validation failure.
func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, defaultsUsed, err := Load(filepath.Join(t.TempDir(), "missing.toml"), true)
	require.NoError(t, err)
	require.True(t, defaultsUsed)
	require.Empty(t, cfg.Relay.Recipient)
	require.Equal(t, "Phone", cfg.Device.Name)
	require.False(t, cfg.Remote.Enabled)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		wantErr string
	}{
		{
			name: "Unknown trigger",
			mutate: `
[device]
name = "Phone"
[filter]
triggers = ["in_fax"]
[relay]
recipient = "me@example.com"
`,
			wantErr: "invalid trigger",
		},
		{
			name: "Negative relay rate",
			mutate: `
[device]
name = "Phone"
[relay]
rate_per_minute = -1
`,
			wantErr: "rate_per_minute",
		},
		{
			name: "Remote enabled without senders",
			mutate: `
[device]
name = "Phone"
[relay]
recipient = "me@example.com"
[remote]
enabled = true
poll_interval = "1m"
`,
			wantErr: "allowed_senders",
		},
		{
			name: "Bad log level",
			mutate: `
[log]
level = "loud"
[device]
name = "Phone"
[relay]
recipient = "me@example.com"
`,
			wantErr: "log.level",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.mutate)
			_, _, err := Load(path, false)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
