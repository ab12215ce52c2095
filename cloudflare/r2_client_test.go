package cloudflare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://abc123.r2.cloudflarestorage.com", Endpoint("abc123"))
}

func TestNewR2NeedsAccountAndPublicURL(t *testing.T) {
	_, err := NewR2(context.Background(), R2Opts{Bucket: "papers", PublicURL: "https://files.example.com"})
	assert.Error(t, err)

	_, err = NewR2(context.Background(), R2Opts{AccountID: "abc123", Bucket: "papers"})
	assert.Error(t, err)
}
