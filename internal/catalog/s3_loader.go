package catalog

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"kart-pricing/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the part of the S3 client the snapshot loader uses.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// cachedSnapshot is the last decoded version of one snapshot object.
type cachedSnapshot struct {
	etag      string
	discounts []model.Discount
}

// bucketLoader reads snapshot objects from one bucket. Objects are fetched
// conditionally on their ETag so a periodic reload of an unchanged snapshot
// costs a 304 instead of a download and decode.
type bucketLoader struct {
	client objectGetter
	bucket string
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedSnapshot
}

// NewS3Loader creates a Loader for snapshots stored in an S3 bucket, using the
// default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	l := newBucketLoader(s3.NewFromConfig(awsCfg), bucket, logger)
	l.logger.Info().Str("region", region).Msg("snapshot bucket configured")
	return l, nil
}

func newBucketLoader(client objectGetter, bucket string, logger zerolog.Logger) *bucketLoader {
	return &bucketLoader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "snapshot-bucket").Str("bucket", bucket).Logger(),
		cache:  make(map[string]cachedSnapshot),
	}
}

// Load returns the discounts of the snapshot object at key.
func (l *bucketLoader) Load(ctx context.Context, key string) ([]model.Discount, error) {
	started := time.Now()

	l.mu.Lock()
	prev, known := l.cache[key]
	l.mu.Unlock()

	input := &s3.GetObjectInput{Bucket: aws.String(l.bucket), Key: aws.String(key)}
	if known {
		input.IfNoneMatch = aws.String(prev.etag)
	}

	out, err := l.client.GetObject(ctx, input)
	if err != nil {
		if known && notModified(err) {
			l.logger.Debug().Str("key", key).Str("etag", prev.etag).Msg("snapshot unchanged")
			return prev.discounts, nil
		}
		return nil, fmt.Errorf("failed to fetch snapshot s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	zr, err := gzip.NewReader(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot s3://%s/%s is not gzipped: %w", l.bucket, key, err)
	}
	defer zr.Close()

	discounts, err := readDiscounts(ctx, zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot s3://%s/%s: %w", l.bucket, key, err)
	}

	etag := aws.ToString(out.ETag)
	if etag != "" {
		l.mu.Lock()
		l.cache[key] = cachedSnapshot{etag: etag, discounts: discounts}
		l.mu.Unlock()
	}

	l.logger.Info().
		Str("key", key).
		Str("etag", etag).
		Int64("bytes", aws.ToInt64(out.ContentLength)).
		Int("discounts", len(discounts)).
		Dur("took", time.Since(started)).
		Msg("snapshot downloaded")

	return discounts, nil
}

// notModified reports whether err is the 304 answer to a conditional GET.
func notModified(err error) bool {
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotModified
}

// fallbackLoader reads snapshots from the bucket and falls back to the local
// copy when the bucket is unavailable.
type fallbackLoader struct {
	bucket Loader
	local  Loader
	prefix string
	logger zerolog.Logger
}

// NewFallbackLoader creates a Loader that reads prefix+path from bucket and
// path from local when that fails. A nil bucket reads local files only.
func NewFallbackLoader(bucket, local Loader, prefix string, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		bucket: bucket,
		local:  local,
		prefix: prefix,
		logger: logger.With().Str("component", "snapshot-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) ([]model.Discount, error) {
	if l.bucket == nil {
		return l.local.Load(ctx, path)
	}

	discounts, err := l.bucket.Load(ctx, l.prefix+path)
	if err == nil {
		return discounts, nil
	}

	l.logger.Warn().
		Err(err).
		Str("key", l.prefix+path).
		Str("path", path).
		Msg("snapshot bucket unavailable, reading local copy")

	return l.local.Load(ctx, path)
}
