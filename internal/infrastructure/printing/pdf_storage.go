package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/printing"
	infraconfig "github.com/govindji/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrPDFNotFound is returned when the requested key holds no stored PDF.
var ErrPDFNotFound = errors.New("pdf not found")

// ErrPresignUnsupported is returned by backends that cannot mint presigned
// URLs. Callers fall back to streaming the bytes through the API instead.
var ErrPresignUnsupported = errors.New("presigned URLs are not supported by this storage backend")

// StoreRequest contains a rendered PDF and the identifiers that place it
// in the key layout.
type StoreRequest struct {
	TenantID uuid.UUID
	JobID    uuid.UUID
	DocType  printing.DocType
	PDFData  []byte
}

// StoreResult describes where a PDF was stored
type StoreResult struct {
	// Key is the object key the PDF can be fetched back with
	Key string
	// Size is the stored size in bytes
	Size int64
}

// PDFStorage persists rendered PDFs so completed print jobs stay
// downloadable after the original request has been served.
type PDFStorage interface {
	// Store saves a rendered PDF and returns its object key
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get returns the PDF bytes for a key, or ErrPDFNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes a stored PDF. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignDownload returns a time-limited download URL, or
	// ErrPresignUnsupported when the backend has no such concept.
	PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (string, time.Time, error)
	// CleanupOlderThan removes PDFs stored before the cutoff and returns
	// how many were deleted. Paired with the print job retention sweep.
	CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// buildPDFKey lays out object keys as
// {tenant_id}/{doc_type}/{year}/{month}/{job_id}.pdf so tenant data stays
// partitioned and retention sweeps can walk by prefix.
func buildPDFKey(tenantID uuid.UUID, docType printing.DocType, jobID uuid.UUID, now time.Time) string {
	return path.Join(
		tenantID.String(),
		strings.ToLower(string(docType)),
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		jobID.String()+".pdf",
	)
}

func validateStoreRequest(req *StoreRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.TenantID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "tenant ID is required", nil)
	}
	if req.JobID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "job ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// =============================================================================
// S3 backend
// =============================================================================

// S3PDFStorage stores PDFs in an S3-compatible bucket (AWS S3, MinIO,
// RustFS). Downloads are served with presigned GET URLs.
type S3PDFStorage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	keyPrefix     string
	logger        *zap.Logger
}

// S3PDFStorageOption configures S3PDFStorage
type S3PDFStorageOption func(*S3PDFStorage)

// WithS3Logger sets a custom logger
func WithS3Logger(logger *zap.Logger) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.logger = logger
	}
}

// WithKeyPrefix namespaces all PDF keys under the given prefix so the
// bucket can be shared with other object kinds.
func WithKeyPrefix(prefix string) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.keyPrefix = strings.Trim(prefix, "/")
	}
}

// NewS3PDFStorage creates an S3-backed PDF store from storage configuration.
func NewS3PDFStorage(cfg *infraconfig.StorageConfig, opts ...S3PDFStorageOption) (*S3PDFStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "ap-south-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3PDFStorage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		keyPrefix:     "prints",
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

func (s *S3PDFStorage) objectKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + "/" + key
}

// Store uploads the PDF and returns its key
func (s *S3PDFStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := validateStoreRequest(req); err != nil {
		return nil, err
	}

	key := buildPDFKey(req.TenantID, req.DocType, req.JobID, time.Now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(req.PDFData),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	s.logger.Info("PDF stored",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &StoreResult{Key: key, Size: int64(len(req.PDFData))}, nil
}

// Get downloads the PDF bytes for a key
func (s *S3PDFStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrPDFNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) || strings.Contains(err.Error(), "NoSuchKey") {
			return nil, ErrPDFNotFound
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to fetch PDF", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read PDF body", err)
	}
	return data, nil
}

// Delete removes the stored PDF. S3 delete is idempotent.
func (s *S3PDFStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// PresignDownload mints a time-limited GET URL with a download filename
func (s *S3PDFStorage) PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrPDFNotFound
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}
	if fileName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", fileName))
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, NewRenderError(ErrCodeStorageFailed, "failed to generate download URL", err)
	}

	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// CleanupOlderThan deletes PDFs last modified before the cutoff, walking
// the configured key prefix page by page.
func (s *S3PDFStorage) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, NewRenderError(ErrCodeStorageFailed, "failed to list PDFs", err)
		}

		var expired []types.ObjectIdentifier
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if obj.LastModified.Before(cutoff) {
				expired = append(expired, types.ObjectIdentifier{Key: obj.Key})
			}
		}
		if len(expired) == 0 {
			continue
		}

		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: expired, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, NewRenderError(ErrCodeStorageFailed, "failed to delete expired PDFs", err)
		}
		deleted += len(expired)
	}

	if deleted > 0 {
		s.logger.Info("Expired PDFs removed",
			zap.Int("count", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// =============================================================================
// Filesystem backend
// =============================================================================

// FileSystemPDFStorage stores PDFs under a base directory. Meant for
// single-node deployments that run without object storage; downloads are
// streamed through the API, so PresignDownload is unsupported.
type FileSystemPDFStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemPDFStorage creates a filesystem-backed PDF store rooted at
// basePath, creating the directory if needed.
func NewFileSystemPDFStorage(basePath string, logger *zap.Logger) (*FileSystemPDFStorage, error) {
	if basePath == "" {
		return nil, errors.New("base path is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", basePath), err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemPDFStorage{basePath: basePath, logger: logger}, nil
}

// resolvePath maps an object key onto the base directory, rejecting keys
// that would escape it. The raw key is checked for ".." before any
// normalization.
func (s *FileSystemPDFStorage) resolvePath(key string) (string, error) {
	cleanKey := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleanKey) || containsDotDot(key) {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid PDF key", nil)
	}

	fullPath := filepath.Join(s.basePath, cleanKey)

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve PDF path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid PDF key", nil)
	}
	return absPath, nil
}

// containsDotDot checks whether any raw path component is ".."
func containsDotDot(p string) bool {
	parts := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Store writes the PDF under the key layout
func (s *FileSystemPDFStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if err := validateStoreRequest(req); err != nil {
		return nil, err
	}

	key := buildPDFKey(req.TenantID, req.DocType, req.JobID, time.Now())
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(fullPath, req.PDFData, 0644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	s.logger.Info("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)))

	return &StoreResult{Key: key, Size: int64(len(req.PDFData))}, nil
}

// Get reads the PDF bytes for a key
func (s *FileSystemPDFStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrPDFNotFound
	}

	fullPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPDFNotFound
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read PDF file", err)
	}
	return data, nil
}

// Delete removes the PDF file. Missing files are not an error.
func (s *FileSystemPDFStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	fullPath, err := s.resolvePath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
	return nil
}

// PresignDownload always fails on the filesystem backend
func (s *FileSystemPDFStorage) PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrPresignUnsupported
}

// CleanupOlderThan removes PDF files modified before the cutoff
func (s *FileSystemPDFStorage) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".pdf") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(p); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	if deleted > 0 {
		s.logger.Info("Expired PDFs removed",
			zap.Int("count", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

var (
	_ PDFStorage = (*S3PDFStorage)(nil)
	_ PDFStorage = (*FileSystemPDFStorage)(nil)
)
