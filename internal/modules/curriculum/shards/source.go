package shards

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/curriculum-backend/internal/platform/gcp"
)

// Source opens the raw JSON document of one shard.
type Source interface {
	Open(ctx context.Context, spec Spec) (io.ReadCloser, error)
}

// HTTPSource reads shards with a plain GET.
type HTTPSource struct {
	Client *http.Client
}

func NewHTTPSource(timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Open(ctx context.Context, spec Spec) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", spec.Location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: status %d", spec.Location, resp.StatusCode)
	}
	return resp.Body, nil
}

// GCSSource reads gs://bucket/key locations.
type GCSSource struct {
	Reader gcp.ObjectReader
}

func (s *GCSSource) Open(ctx context.Context, spec Spec) (io.ReadCloser, error) {
	bucket, key, err := splitObjectURL(spec.Location)
	if err != nil {
		return nil, err
	}
	return s.Reader.Open(ctx, bucket, key)
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// S3Source reads s3://bucket/key locations from any S3 compatible store.
type S3Source struct {
	client *minio.Client
}

func NewS3Source(cfg S3Config) (*S3Source, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}

	var creds *credentials.Credentials
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: u.Scheme == "https",
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return &S3Source{client: client}, nil
}

func (s *S3Source) Open(ctx context.Context, spec Spec) (io.ReadCloser, error) {
	bucket, key, err := splitObjectURL(spec.Location)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	// GetObject is lazy; Stat surfaces a missing object before decoding starts.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat s3://%s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// MultiSource picks a backend by the scheme of each shard location. Nil
// backends are treated as not configured.
type MultiSource struct {
	HTTP Source
	GCS  Source
	S3   Source
}

func (m *MultiSource) Open(ctx context.Context, spec Spec) (io.ReadCloser, error) {
	u, err := url.Parse(spec.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid shard location %q: %w", spec.Location, err)
	}
	var src Source
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		src = m.HTTP
	case "gs":
		src = m.GCS
	case "s3":
		src = m.S3
	default:
		return nil, fmt.Errorf("unsupported shard location scheme %q", u.Scheme)
	}
	if src == nil {
		return nil, fmt.Errorf("no source configured for %s:// locations", u.Scheme)
	}
	return src.Open(ctx, spec)
}

func splitObjectURL(loc string) (bucket, key string, err error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid object location %q: %w", loc, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("object location %q must look like %s://bucket/key", loc, u.Scheme)
	}
	return bucket, key, nil
}
