package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/questx-lab/raffle/config"
)

type s3Storage struct {
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	cfg        config.S3Configs
}

func NewS3Storage(cfg config.S3Configs) (*s3Storage, error) {
	session, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(cfg.SSLDisabled),
	})
	if err != nil {
		return nil, err
	}

	return &s3Storage{
		uploader:   s3manager.NewUploader(session),
		downloader: s3manager.NewDownloader(session),
		cfg:        cfg,
	}, nil
}

func (s *s3Storage) bucket(bucket string) string {
	if bucket == "" {
		return s.cfg.Bucket
	}

	return bucket
}

func (s *s3Storage) generateUploadURL(object *UploadObject) *UploadResponse {
	fileName := objectKey(object.Prefix, object.FileName)

	return &UploadResponse{
		Url:      fmt.Sprintf("%s/%s/%s", s.cfg.PublicEndpoint, s.bucket(object.Bucket), fileName),
		FileName: fileName,
	}
}

func (s *s3Storage) Upload(ctx context.Context, object *UploadObject) (*UploadResponse, error) {
	resp := s.generateUploadURL(object)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket(object.Bucket)),
		Key:         aws.String(resp.FileName),
		Body:        bytes.NewReader(object.Data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(object.Mime),
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w, bucket %s, key %s", err, object.Bucket, resp.Url)
	}

	return resp, nil
}

func (s *s3Storage) BulkUpload(ctx context.Context, objects []*UploadObject) ([]*UploadResponse, error) {
	bObjects := make([]s3manager.BatchUploadObject, 0, len(objects))
	out := make([]*UploadResponse, 0, len(objects))
	for _, o := range objects {
		resp := s.generateUploadURL(o)
		bObjects = append(bObjects, s3manager.BatchUploadObject{
			Object: &s3manager.UploadInput{
				Bucket:      aws.String(s.bucket(o.Bucket)),
				Key:         aws.String(resp.FileName),
				Body:        bytes.NewReader(o.Data),
				ACL:         aws.String("public-read"),
				ContentType: aws.String(o.Mime),
			},
		})
		out = append(out, resp)
	}

	if err := s.uploader.UploadWithIterator(ctx, &s3manager.UploadObjectsIterator{
		Objects: bObjects,
	}); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *s3Storage) Download(ctx context.Context, bucket, fileName string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket(bucket)),
		Key:    aws.String(fileName),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return buf.Bytes(), nil
}
