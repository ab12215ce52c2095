// Package cloudflare connects to Cloudflare's S3 compatible object store
package cloudflare

import (
	"bitwise74/conference-api/aws"
	"context"
	"errors"
	"fmt"
)

type R2Opts struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Public bucket URL or custom domain. R2 has no default public URL.
	PublicURL string
}

// Endpoint returns the S3 API endpoint of an account
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewR2 opens an R2 bucket through the S3 client. Papers, copyright forms and
// payment proofs are stored the same way as on S3.
func NewR2(ctx context.Context, o R2Opts) (*aws.S3Client, error) {
	if o.AccountID == "" {
		return nil, errors.New("no cloudflare account id provided")
	}

	if o.PublicURL == "" {
		return nil, errors.New("r2 buckets need a public url")
	}

	return aws.NewS3(ctx, aws.S3Opts{
		Region:          "auto",
		AccessKey:       o.AccessKeyID,
		SecretAccessKey: o.SecretAccessKey,
		Bucket:          o.Bucket,
		Endpoint:        Endpoint(o.AccountID),
		PublicURL:       o.PublicURL,
	})
}
