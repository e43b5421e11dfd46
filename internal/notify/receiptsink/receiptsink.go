// Package receiptsink archives a JSON settlement receipt for every terminal
// booking in an S3-compatible bucket.
package receiptsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MarkoPoloResearchLab/settlement/internal/notify"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	contentTypeJSON = "application/json"
	keyPrefix       = "receipts/"
)

// Config locates the bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archiver is a notify.Sink writing receipts to object storage.
type Archiver struct {
	bucket      string
	client      objectStore
	bucketMutex sync.Mutex
	bucketReady bool
}

// New configures a minio client for cfg.
func New(cfg Config) (*Archiver, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &Archiver{bucket: bucket, client: client}, nil
}

func (archiver *Archiver) Name() string {
	return "receipts"
}

// Publish stores the receipt of a terminal event; other events are ignored.
func (archiver *Archiver) Publish(ctx context.Context, event settlement.BookingEvent) error {
	receipt, terminal := notify.NewReceipt(event)
	if !terminal {
		return nil
	}
	if err := archiver.ensureBucket(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("s3: encode receipt: %w", err)
	}
	_, err = archiver.client.PutObject(ctx, archiver.bucket, ObjectKey(event.BookingID), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
		UserMetadata: map[string]string{
			"outcome": string(receipt.Outcome),
		},
	})
	if err != nil {
		return fmt.Errorf("s3: put receipt: %w", err)
	}
	return nil
}

// ObjectKey returns the receipt object name for a booking.
func ObjectKey(bookingID string) string {
	return keyPrefix + url.PathEscape(bookingID) + ".json"
}

func (archiver *Archiver) ensureBucket(ctx context.Context) error {
	archiver.bucketMutex.Lock()
	defer archiver.bucketMutex.Unlock()
	if archiver.bucketReady {
		return nil
	}
	exists, err := archiver.client.BucketExists(ctx, archiver.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := archiver.client.MakeBucket(ctx, archiver.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s3: create bucket: %w", err)
		}
	}
	archiver.bucketReady = true
	return nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
