package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/envutil"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type BucketCategory string

const (
	// Uploaded quiz page images.
	BucketCategoryPageScan BucketCategory = "page_scan"
	// Recorded answers and synthesized question audio.
	BucketCategoryAudio BucketCategory = "audio"
)

var ErrObjectNotFound = errors.New("object not found")

type bucketConfig struct {
	name      string
	cdnDomain string
}

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader, contentType string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error)
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error
	GetPublicURL(category BucketCategory, key string) string
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
}

type bucketService struct {
	log            *logger.Logger
	storageClient  *storage.Client
	storage        StorageConfig
	pageScanBucket bucketConfig
	audioBucket    bucketConfig
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	cfg, err := StorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBucketServiceWithConfig(log, cfg)
}

func NewBucketServiceWithConfig(log *logger.Logger, cfg StorageConfig) (BucketService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	pageScanName := envutil.String("PAGE_SCAN_GCS_BUCKET_NAME", "")
	audioName := envutil.String("AUDIO_GCS_BUCKET_NAME", "")
	if pageScanName == "" {
		return nil, fmt.Errorf("missing env var PAGE_SCAN_GCS_BUCKET_NAME")
	}
	if audioName == "" {
		return nil, fmt.Errorf("missing env var AUDIO_GCS_BUCKET_NAME")
	}

	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "BucketService")
	serviceLog.Info("Object storage initialized",
		"mode", cfg.Mode,
		"mode_inferred", cfg.Inferred,
		"emulator_host", cfg.EmulatorHost,
		"page_scan_bucket", pageScanName,
		"audio_bucket", audioName,
	)

	return newBucketService(serviceLog, client, cfg,
		bucketConfig{name: pageScanName, cdnDomain: envutil.String("PAGE_SCAN_CDN_DOMAIN", "")},
		bucketConfig{name: audioName, cdnDomain: envutil.String("AUDIO_CDN_DOMAIN", "")},
	), nil
}

func newBucketService(log *logger.Logger, client *storage.Client, cfg StorageConfig, pageScan, audio bucketConfig) *bucketService {
	return &bucketService{
		log:            log,
		storageClient:  client,
		storage:        cfg,
		pageScanBucket: pageScan,
		audioBucket:    audio,
	}
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	if cfg.IsEmulator() {
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (bs *bucketService) bucketFor(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryPageScan:
		return bs.pageScanBucket, nil
	case BucketCategoryAudio:
		return bs.audioBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader, contentType string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if contentType = strings.TrimSpace(contentType); contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	w.ContentType = contentType
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// ContentTypeForKey guesses a MIME type from the object key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".ogg"), strings.HasSuffix(s, ".opus"):
		return "audio/ogg"
	case strings.HasSuffix(s, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(s, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(s, ".m4a"):
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.storageClient.Bucket(cfg.name).Object(key).NewReader(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", cfg.name, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open GCS object %q: %w", key, err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

func (bs *bucketService) GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	attrs, err := bs.storageClient.Bucket(cfg.name).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", cfg.name, key, ErrObjectNotFound)
		}
		return nil, err
	}
	return &ObjectAttrs{Size: attrs.Size, ContentType: attrs.ContentType, Updated: attrs.Updated}, nil
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

// DeletePrefix removes every object under prefix. Individual delete failures
// are logged and skipped.
func (bs *bucketService) DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return err
	}
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("refusing to delete empty prefix in bucket %q", cfg.name)
	}
	listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := bs.storageClient.Bucket(cfg.name).Objects(listCtx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := bs.DeleteFile(dbctx.Context{Ctx: ctx}, category, attrs.Name); err != nil {
			bs.log.Warn("Delete object failed", "bucket", cfg.name, "key", attrs.Name, "error", err)
		}
	}
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.bucketFor(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if base := bs.publicBaseURL(); base != "" {
		if bs.storage.IsEmulator() {
			// fake-gcs serves media through the download API.
			return fmt.Sprintf("%s/download/storage/v1/b/%s/o/%s?alt=media", base, cfg.name, url.PathEscape(key))
		}
		return fmt.Sprintf("%s/%s/%s", base, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) publicBaseURL() string {
	if bs.storage.PublicBaseURL != "" {
		return bs.storage.PublicBaseURL
	}
	if bs.storage.IsEmulator() {
		return bs.storage.EmulatorHost
	}
	return ""
}
