package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medrx_backend/internal/config"
	"medrx_backend/internal/model"
	"medrx_backend/internal/repository"
)

// objectPutter is the part of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ScanService stores photos of paper prescriptions in Cloudflare R2.
type ScanService struct {
	store         objectPutter
	bucket        string
	publicURL     string
	scans         repository.ScanRepository
	prescriptions repository.PrescriptionRepository
	logger        zerolog.Logger
}

// NewScanService builds an S3-compatible client for R2. Without R2 settings the service
// still serves listings, and uploads fail with model.ErrStorageDisabled.
func NewScanService(ctx context.Context, cfg *config.Config, scans repository.ScanRepository, prescriptions repository.PrescriptionRepository, logger zerolog.Logger) (*ScanService, error) {
	if !cfg.StorageConfigured() {
		logger.Warn().Msg("R2 not configured, prescription scan uploads disabled")
		return NewDisabledScanService(scans, prescriptions, logger), nil
	}
	svc := NewDisabledScanService(scans, prescriptions, logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config for r2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	svc.store = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	svc.bucket = cfg.R2BucketName
	svc.publicURL = strings.TrimSuffix(cfg.R2PublicURL, "/")
	return svc, nil
}

// NewDisabledScanService serves listings only; Upload returns model.ErrStorageDisabled.
func NewDisabledScanService(scans repository.ScanRepository, prescriptions repository.PrescriptionRepository, logger zerolog.Logger) *ScanService {
	return &ScanService{
		scans:         scans,
		prescriptions: prescriptions,
		logger:        logger.With().Str("component", "scans").Logger(),
	}
}

// Upload validates the image, downsizes it to fit ScanMaxDimension, stores it as JPEG
// and records it against the prescription.
func (s *ScanService) Upload(ctx context.Context, prescriptionID, uploaderID int64, file io.Reader, header *multipart.FileHeader) (*model.PrescriptionScan, error) {
	if s.store == nil {
		return nil, model.ErrStorageDisabled
	}
	if _, err := s.prescriptions.GetByID(ctx, prescriptionID); err != nil {
		return nil, err
	}

	data, err := readAndValidateImage(file, header, model.MaxScanSizeBytes)
	if err != nil {
		return nil, err
	}
	jpegBytes, err := fitToJPEG(data, model.ScanMaxDimension, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d/%s%s", model.ScanFolder, prescriptionID, uuid.NewString(), model.ScanExt)
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jpegBytes),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.ScanCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to r2: %w", err)
	}

	scan := &model.PrescriptionScan{
		PrescriptionID: prescriptionID,
		ObjectKey:      key,
		URL:            fmt.Sprintf("%s/%s", s.publicURL, key),
		UploadedBy:     uploaderID,
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("scan uploaded but not recorded")
		return nil, err
	}
	return scan, nil
}

func (s *ScanService) List(ctx context.Context, prescriptionID int64) ([]model.PrescriptionScan, error) {
	if _, err := s.prescriptions.GetByID(ctx, prescriptionID); err != nil {
		return nil, err
	}
	return s.scans.ListByPrescription(ctx, prescriptionID)
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file io.Reader, header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header != nil && header.Size > maxSize {
		return nil, model.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, model.ErrFileTooLarge
	}

	var contentType string
	if header != nil {
		contentType = header.Header.Get("Content-Type")
	}
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, model.ErrInvalidImageType
	}
	return data, nil
}

// fitToJPEG scales the image down, never up, to fit a maxDim square and encodes it as JPEG.
func fitToJPEG(data []byte, maxDim, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImageType, err)
	}

	fitted := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
