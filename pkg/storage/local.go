package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// localStorage writes objects under a base directory, the way the deploy
// scripts update the frontend constants folder.
type localStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *localStorage {
	return &localStorage{baseDir: baseDir}
}

func (s *localStorage) path(bucket, fileName string) string {
	return filepath.Join(s.baseDir, bucket, filepath.FromSlash(fileName))
}

func (s *localStorage) Upload(ctx context.Context, object *UploadObject) (*UploadResponse, error) {
	fileName := objectKey(object.Prefix, object.FileName)
	path := s.path(object.Bucket, fileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, object.Data, 0644); err != nil {
		return nil, err
	}

	return &UploadResponse{Url: path, FileName: fileName}, nil
}

func (s *localStorage) BulkUpload(ctx context.Context, objects []*UploadObject) ([]*UploadResponse, error) {
	out := make([]*UploadResponse, 0, len(objects))
	for _, o := range objects {
		resp, err := s.Upload(ctx, o)
		if err != nil {
			return nil, err
		}

		out = append(out, resp)
	}

	return out, nil
}

func (s *localStorage) Download(ctx context.Context, bucket, fileName string) ([]byte, error) {
	b, err := os.ReadFile(s.path(bucket, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return b, nil
}
