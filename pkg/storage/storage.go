package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
	BulkUpload(context.Context, []*UploadObject) ([]*UploadResponse, error)
	Download(ctx context.Context, bucket, fileName string) ([]byte, error)
}

// UploadObject is stored at Prefix/FileName. An existing object with the same
// name is overwritten.
type UploadObject struct {
	Bucket   string
	Prefix   string
	FileName string
	Mime     string
	Data     []byte
}

type UploadResponse struct {
	Url      string
	FileName string
}

func objectKey(prefix, fileName string) string {
	if prefix == "" {
		return fileName
	}

	return prefix + "/" + fileName
}
