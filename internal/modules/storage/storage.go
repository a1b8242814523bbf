// Package storage is the S3 gateway for uploaded images. Every stored object
// belongs to exactly one entity; callers own deletion on cascade.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/velora-shop/core/internal/config"
	"github.com/velora-shop/core/internal/pkg/errs"
)

const defaultMaxUploadBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Object describes a stored image.
type Object struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// api is the subset of the S3 client the gateway uses.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Gateway uploads and deletes image objects in S3-compatible storage.
type Gateway struct {
	client       api
	log          *zap.Logger
	endpoint     string
	customDomain string
	maxBytes     int64
}

// New builds a Gateway from config. The client is constructed explicitly;
// no ambient AWS credential chain is consulted.
func New(cfg config.StorageConfig, log *zap.Logger) *Gateway {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	maxBytes := int64(cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	return &Gateway{
		client:       client,
		log:          log,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		customDomain: strings.TrimRight(cfg.CustomDomain, "/"),
		maxBytes:     maxBytes,
	}
}

// Upload validates and stores an image, returning its public URL and object
// path. The object key is derived from desiredName plus a timestamp and a
// random suffix so concurrent uploads of the same name never collide.
func (g *Gateway) Upload(ctx context.Context, data []byte, mimeType, bucket, desiredName string) (Object, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return Object{}, errs.Upload(fmt.Sprintf("unsupported content type %q, only images are allowed", mimeType), nil)
	}
	if len(data) == 0 {
		return Object{}, errs.Upload("empty file", nil)
	}
	if int64(len(data)) > g.maxBytes {
		return Object{}, errs.Upload(fmt.Sprintf("file exceeds %d MB limit", g.maxBytes>>20), nil)
	}

	key := buildObjectKey(desiredName, ext)
	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return Object{}, errs.Upload("store object", err)
	}

	return Object{URL: g.publicURL(bucket, key), Path: key}, nil
}

// Delete removes an object. Deleting a missing object is a success.
func (g *Gateway) Delete(ctx context.Context, bucket, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectPath),
	})
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return nil
	}
	return err
}

// Cleanup best-effort deletes the objects behind the given public URLs.
// Failures are logged and swallowed; cascade deletes must not be blocked by
// storage unavailability.
func (g *Gateway) Cleanup(ctx context.Context, bucket string, urls ...string) {
	for _, u := range urls {
		p := PathFromURL(u)
		if p == "" {
			continue
		}
		if err := g.Delete(ctx, bucket, p); err != nil {
			g.log.Warn("storage cleanup failed",
				zap.String("bucket", bucket),
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}
}

func (g *Gateway) publicURL(bucket, key string) string {
	if g.customDomain != "" {
		return g.customDomain + "/" + bucket + "/" + key
	}
	if g.endpoint != "" {
		return g.endpoint + "/" + bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// PathFromURL extracts the object key from a public URL produced by this
// gateway. Returns "" for malformed input.
func PathFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return ""
	}
	// virtual-hosted style: bucket is in the host, path is the key
	if strings.Contains(u.Host, ".s3.") || strings.HasSuffix(u.Host, ".amazonaws.com") {
		return p
	}
	// path style or CDN: first segment is the bucket
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func buildObjectKey(desiredName, ext string) string {
	base := strings.TrimSuffix(desiredName, path.Ext(desiredName))
	base = sanitizeName(base)
	if base == "" {
		base = "upload"
	}

	var buf [4]byte
	rand.Read(buf[:])
	return fmt.Sprintf("%s-%d-%s.%s", base, time.Now().UnixMilli(), hex.EncodeToString(buf[:]), ext)
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
