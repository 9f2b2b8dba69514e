package testutil

import (
	"context"

	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/storage"
)

type MockStorage struct {
	UploadFunc     func(context.Context, *storage.UploadObject) (*storage.UploadResponse, error)
	BulkUploadFunc func(context.Context, []*storage.UploadObject) ([]*storage.UploadResponse, error)
	DownloadFunc   func(context.Context, string, string) ([]byte, error)
}

func (m *MockStorage) Upload(
	ctx context.Context, obj *storage.UploadObject,
) (*storage.UploadResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, obj)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockStorage) BulkUpload(
	ctx context.Context, obj []*storage.UploadObject,
) ([]*storage.UploadResponse, error) {
	if m.BulkUploadFunc != nil {
		return m.BulkUploadFunc(ctx, obj)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockStorage) Download(ctx context.Context, bucket, fileName string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, bucket, fileName)
	}

	return nil, storage.ErrNotFound
}
