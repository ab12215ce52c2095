package config

import (
	"testing"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fresh(t *testing.T) {
	t.Helper()

	v.Reset()
	setDefaults()
	t.Cleanup(v.Reset)
}

func TestDefaultsAreValid(t *testing.T) {
	fresh(t)
	require.NoError(t, Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"log level", map[string]any{"app.log_level": "loud"}},
		{"port", map[string]any{"host.port": 0}},
		{"ssl without certificate", map[string]any{"host.ssl.enabled": true}},
		{"driver", map[string]any{"db.driver": "mysql"}},
		{"postgres without dsn", map[string]any{"db.driver": "postgres"}},
		{"deadline", map[string]any{"review.deadline_days": 0}},
		{"long deadline", map[string]any{"review.deadline_days": 90}},
		{"cron", map[string]any{"review.reminder_cron": "every hour"}},
		{"outbox workers", map[string]any{"outbox.workers": 0}},
		{"mail without host", map[string]any{"mail.enabled": true, "mail.sender": "a@b.c"}},
		{"s3 without bucket", map[string]any{"storage.type": "s3", "aws.region": "eu", "aws.access_key": "k", "aws.secret_access_key": "s"}},
		{"r2 without public url", map[string]any{"storage.type": "r2", "cloudflare.account_id": "a", "cloudflare.access_key_id": "k", "cloudflare.secret_access_key": "s", "cloudflare.bucket": "b"}},
		{"storage", map[string]any{"storage.type": "floppy"}},
		{"rate limit", map[string]any{"security.rate_limit": -1}},
		{"turnstile without secret", map[string]any{"cloudflare.turnstile.enabled": true}},
		{"negative fee", map[string]any{"payment.fees": map[string]any{"student": -5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh(t)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			assert.Error(t, Validate())
		})
	}
}

func TestFees(t *testing.T) {
	fresh(t)
	v.Set("payment.fees", map[string]any{"student": 100, "ieee": 250.5, "bogus": "free"})

	assert.Equal(t, map[string]float64{"student": 100, "ieee": 250.5}, Fees())
}
