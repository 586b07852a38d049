package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/config"
)

// r2Host is the account-scoped S3 API host of Cloudflare R2.
const r2Host = "r2.cloudflarestorage.com"

// NewR2Storage talks to Cloudflare R2 through its S3-compatible API. Objects are
// removed through the shared S3 Delete, which already treats missing keys as gone.
func NewR2Storage(cfg config.Config) (Storage, error) {
	bucket := strings.TrimSpace(cfg.StorageR2Bucket)
	if bucket == "" {
		return nil, errors.New("storage: missing R2 bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageR2AccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageR2SecretAccessKey)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing R2 credentials")
	}

	endpoint, err := r2Endpoint(cfg.StorageR2Endpoint, cfg.StorageR2AccountID, cfg.StorageR2Jurisdiction)
	if err != nil {
		return nil, err
	}

	// R2 signs with "auto"; us-east-1 is accepted as an alias.
	region := strings.TrimSpace(cfg.StorageR2Region)
	switch region {
	case "":
		region = "auto"
	case "auto", "us-east-1":
	default:
		return nil, fmt.Errorf("storage: R2 region must be \"auto\", got %q", region)
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		ForcePathStyle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create R2 client: %w", err)
	}

	return &remoteS3Storage{
		client: client,
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageR2Prefix),
	}, nil
}

// r2Endpoint resolves the S3 endpoint for an account. An explicit endpoint wins
// and must be an absolute https URL without a path, since the bucket is appended
// in path style.
func r2Endpoint(endpoint, accountID, jurisdiction string) (string, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("storage: invalid R2 endpoint: %w", err)
		}
		if u.Scheme != "https" || u.Host == "" {
			return "", fmt.Errorf("storage: R2 endpoint %q must be an https URL", endpoint)
		}
		if u.Path != "" || u.RawQuery != "" {
			return "", fmt.Errorf("storage: R2 endpoint %q must not carry a path or query", endpoint)
		}
		return endpoint, nil
	}

	accountID = strings.ToLower(strings.TrimSpace(accountID))
	if accountID == "" {
		return "", errors.New("storage: missing R2 endpoint or account id")
	}
	for _, r := range accountID {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("storage: R2 account id %q is not hexadecimal", accountID)
		}
	}

	host := accountID + "." + r2Host
	switch j := strings.ToLower(strings.TrimSpace(jurisdiction)); j {
	case "", "default":
	case "eu", "fedramp":
		host = accountID + "." + j + "." + r2Host
	default:
		return "", fmt.Errorf("storage: unknown R2 jurisdiction %q", jurisdiction)
	}
	return "https://" + host, nil
}
