// Package imagestore keeps menu item photos in S3-compatible object storage.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/juju/errors"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which stored objects are served, e.g. a CDN
	// origin. Defaults to Endpoint/Bucket.
	PublicURL string
}

// Enabled reports whether enough is configured to upload.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Store struct {
	cfg    Config
	client s3Client
}

// New returns a Store, or nil when cfg is not enabled.
func New(cfg Config) *Store {
	if !cfg.Enabled() {
		return nil
	}
	return &Store{cfg: cfg, client: newS3Client(cfg)}
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload stores an image for restaurantID and returns its public URL. The
// content type is sniffed from the data; anything that is not an image is
// rejected as NotValid.
func (s *Store) Upload(ctx context.Context, restaurantID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", errors.Annotate(err, "read image")
	}
	if len(data) == 0 {
		return "", errors.NotValidf("empty image")
	}
	if len(data) > MaxSize {
		return "", errors.NotValidf("image larger than %d bytes", MaxSize)
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", errors.NotValidf("content type %q", contentType)
	}

	key := path.Join("foods", restaurantID, uuid.NewString()+ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Annotate(err, "put object")
	}
	return s.objectURL(key), nil
}

func (s *Store) objectURL(key string) string {
	base := s.cfg.PublicURL
	if base == "" {
		endpoint := s.cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", s.cfg.Region)
		}
		base = strings.TrimRight(endpoint, "/") + "/" + s.cfg.Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}
