package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrAlreadyArchived is returned when a snapshot for the invoice exists.
// Snapshots are write-once.
var ErrAlreadyArchived = errors.New("invoice snapshot already archived")

// InvoiceArchive writes one immutable JSON object per invoice under
// <prefix>/<invoice number>.json.
type InvoiceArchive struct {
	client objectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// NewInvoiceArchive connects to the configured bucket, creating it if needed
func NewInvoiceArchive(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*InvoiceArchive, error) {
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := newInvoiceArchive(client, cfg.Bucket, cfg.Prefix, logger)
	if err := ensureBucket(ctx, client, cfg.Bucket, a.logger); err != nil {
		return nil, err
	}
	return a, nil
}

func newInvoiceArchive(client objectAPI, bucket, prefix string, logger *zap.Logger) *InvoiceArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.Named("invoice_archive"),
	}
}

// Key returns the object key for an invoice number
func (a *InvoiceArchive) Key(invoiceNumber string) string {
	return path.Join(a.prefix, invoiceNumber+".json")
}

// Archive stores snapshot as JSON. The put is conditional on the key not
// existing, so an invoice is archived at most once.
func (a *InvoiceArchive) Archive(ctx context.Context, invoiceNumber string, snapshot any) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal invoice snapshot: %w", err)
	}

	key := a.Key(invoiceNumber)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return ErrAlreadyArchived
		}
		return fmt.Errorf("failed to archive invoice %s: %w", invoiceNumber, err)
	}

	a.logger.Debug("invoice snapshot archived", zap.String("key", key))
	return nil
}

// Fetch reads an archived snapshot back into dst
func (a *InvoiceArchive) Fetch(ctx context.Context, invoiceNumber string, dst any) error {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.Key(invoiceNumber)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Invoice snapshot %s not found", invoiceNumber))
		}
		return fmt.Errorf("failed to fetch invoice %s: %w", invoiceNumber, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read invoice snapshot: %w", err)
	}
	return json.Unmarshal(data, dst)
}

// NopArchive discards snapshots; it is used when storage is disabled
type NopArchive struct{}

// Archive does nothing
func (NopArchive) Archive(context.Context, string, any) error { return nil }

// Key is empty; nothing is stored
func (NopArchive) Key(string) string { return "" }
