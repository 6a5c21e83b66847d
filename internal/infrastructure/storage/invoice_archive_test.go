package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	ctypes  map[string]string
	putErr  error
	headErr error
	creates int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets: make(map[string]bool),
		objects: make(map[string][]byte),
		ctypes:  make(map[string]string),
	}
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	if !f.buckets[aws.ToString(in.Bucket)] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.buckets[aws.ToString(in.Bucket)] = true
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	if _, exists := f.objects[key]; exists && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = body
	f.ctypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

type snapshot struct {
	InvoiceNumber string `json:"invoice_number"`
	TotalAmount   string `json:"total_amount"`
}

func TestInvoiceArchive_Archive(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	archive := newInvoiceArchive(client, "tbeauty", "invoices", zap.NewNop())

	assert.Equal(t, "invoices/INV-2026-00001.json", archive.Key("INV-2026-00001"))

	snap := snapshot{InvoiceNumber: "INV-2026-00001", TotalAmount: "24"}
	require.NoError(t, archive.Archive(ctx, snap.InvoiceNumber, snap))
	assert.JSONEq(t, `{"invoice_number":"INV-2026-00001","total_amount":"24"}`,
		string(client.objects["tbeauty/invoices/INV-2026-00001.json"]))
	assert.Equal(t, "application/json", client.ctypes["tbeauty/invoices/INV-2026-00001.json"])

	t.Run("second archive of the same invoice is rejected", func(t *testing.T) {
		err := archive.Archive(ctx, snap.InvoiceNumber, snapshot{InvoiceNumber: snap.InvoiceNumber, TotalAmount: "99"})
		assert.ErrorIs(t, err, ErrAlreadyArchived)

		var got snapshot
		require.NoError(t, archive.Fetch(ctx, snap.InvoiceNumber, &got))
		assert.Equal(t, snap, got)
	})

	t.Run("transport error is wrapped", func(t *testing.T) {
		client.putErr = errors.New("connection reset")
		defer func() { client.putErr = nil }()

		err := archive.Archive(ctx, "INV-2026-00002", snap)
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, ErrAlreadyArchived)
	})

	t.Run("unmarshalable snapshot", func(t *testing.T) {
		err := archive.Archive(ctx, "INV-2026-00003", map[string]any{"bad": make(chan int)})
		assert.ErrorContains(t, err, "marshal invoice snapshot")
	})
}

func TestInvoiceArchive_FetchMissing(t *testing.T) {
	archive := newInvoiceArchive(newFakeS3(), "tbeauty", "invoices", nil)

	var got snapshot
	err := archive.Fetch(context.Background(), "INV-2026-00404", &got)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a missing bucket once", func(t *testing.T) {
		client := newFakeS3()
		require.NoError(t, ensureBucket(ctx, client, "tbeauty", zap.NewNop()))
		require.NoError(t, ensureBucket(ctx, client, "tbeauty", zap.NewNop()))
		assert.Equal(t, 1, client.creates)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		client := newFakeS3()
		client.headErr = errors.New("access denied")
		err := ensureBucket(ctx, client, "tbeauty", zap.NewNop())
		assert.ErrorContains(t, err, "access denied")
		assert.Zero(t, client.creates)
	})
}

func TestNewS3Client(t *testing.T) {
	_, err := NewS3Client(context.Background(), config.StorageConfig{})
	assert.ErrorContains(t, err, "bucket is required")

	client, err := NewS3Client(context.Background(), config.StorageConfig{
		Bucket:          "tbeauty",
		Region:          "us-east-1",
		Endpoint:        "minio.local:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://minio.local:9000", aws.ToString(client.Options().BaseEndpoint))
	assert.True(t, client.Options().UsePathStyle)
}

func TestNopArchive(t *testing.T) {
	assert.NoError(t, NopArchive{}.Archive(context.Background(), "INV-2026-00001", snapshot{}))
}
