package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"account-audit/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// BucketReport is the result of the report storage check.
type BucketReport struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	BucketExists bool   `json:"bucket_exists"`
	PrefixExists bool   `json:"prefix_exists"`
}

// Ready reports whether reports can be published without setup.
func (r BucketReport) Ready() bool {
	return r.BucketExists && r.PrefixExists
}

// CheckReportStorage checks the report bucket and prefix.
func CheckReportStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*BucketReport, error) {
	report := &BucketReport{Bucket: bucket, Prefix: folder(prefix)}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		return report, nil
	}

	// Only the first object matters; cancelling releases the rest of the listing
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:    report.Prefix,
		Recursive: false,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(listCtx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", report.Prefix, obj.Err)
		}
		report.PrefixExists = true
		break
	}
	return report, nil
}

// FixReportStorage creates whatever report reported missing.
func FixReportStorage(ctx context.Context, client storage.Client, region string, report *BucketReport, logger *zap.Logger) error {
	if !report.BucketExists {
		if err := storage.EnsureBucket(ctx, client, report.Bucket, region); err != nil {
			return err
		}
		logger.Info("Created report bucket", zap.String("bucket", report.Bucket))
		report.BucketExists = true
	}
	if !report.PrefixExists && report.Prefix != "" {
		_, err := client.PutObject(ctx, report.Bucket, report.Prefix, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", report.Prefix), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", report.Prefix))
		report.PrefixExists = true
	}
	return nil
}

func folder(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
