package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"imeitrack/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService persists transfer reports and pre-delete unit snapshots to
// object storage. Everything here is best effort from the caller's point of
// view; the database stays the source of truth.
type ArchiveService interface {
	EnsureBucket(ctx context.Context) error

	// ArchiveTransferReport renders the transfer's report as a PDF and
	// uploads it. Returns the object name.
	ArchiveTransferReport(ctx context.Context, transfer *models.Transfer) (string, error)

	// ArchiveUnitSnapshot uploads a JSON snapshot of units about to be
	// deleted. Returns the object name.
	ArchiveUnitSnapshot(ctx context.Context, units []*models.InventoryUnit) (string, error)
}

type minioArchiveService struct {
	client *minio.Client
	bucket string
}

func NewMinioArchiveService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioArchiveService{client: client, bucket: bucket}, nil
}

func (s *minioArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *minioArchiveService) ArchiveTransferReport(ctx context.Context, transfer *models.Transfer) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Stock Transfer %s", transfer.FolioString()), false)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 9)
	for _, line := range strings.Split(transfer.ReportText, "\n") {
		pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", fmt.Errorf("failed to render report PDF: %w", err)
	}

	objectName := fmt.Sprintf("transfers/%s/%s.pdf", transfer.FolioString(), transfer.ID)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return objectName, nil
}

func (s *minioArchiveService) ArchiveUnitSnapshot(ctx context.Context, units []*models.InventoryUnit) (string, error) {
	data, err := json.MarshalIndent(units, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal unit snapshot: %w", err)
	}

	objectName := fmt.Sprintf("deleted-units/%s.json", time.Now().UTC().Format("20060102T150405.000000000Z"))
	reader := bytes.NewReader(data)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload unit snapshot: %w", err)
	}
	return objectName, nil
}
