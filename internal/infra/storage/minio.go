package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// Store archives submitted photos in a MinIO/S3 bucket
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	secure     bool
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, secure: useSSL}, nil
}

// Put uploads the photo bytes under key and returns the object URL
func (s *Store) Put(ctx context.Context, key string, p domain.Photo) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(p.Data), int64(len(p.Data)),
		minio.PutObjectOptions{ContentType: p.MIMEType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return objectURL(s.secure, s.client.EndpointURL().Host, s.bucketName, key), nil
}

// Ping checks that the bucket is reachable
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s not found", s.bucketName)
	}
	return nil
}

func objectURL(secure bool, host, bucket, key string) string {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: "/" + bucket + "/" + key}
	return u.String()
}

var _ domain.PhotoArchive = (*Store)(nil)
