package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Store keeps each slot as the object <prefix><key>.json
type S3Store struct {
	s3Client *s3.S3
	config   *S3Config
	prefix   string
	logger   *logrus.Logger
}

// NewS3Store S3をバックエンドとするストアを作成
func NewS3Store(config *S3Config, prefix string, logger *logrus.Logger) (*S3Store, error) {
	client, err := newS3Client(config)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"bucket": config.Bucket,
		"prefix": prefix,
	}).Info("S3ストアを初期化しました")
	return &S3Store{s3Client: client, config: config, prefix: prefix, logger: logger}, nil
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("S3からの読み込みに失敗: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("S3オブジェクトの読み込みに失敗: %w", err)
	}
	return data, nil
}

func (s *S3Store) Set(ctx context.Context, key string, value []byte) error {
	objectKey := s.objectKey(key)
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
		Metadata: map[string]*string{
			"upload-time": aws.String(time.Now().Format(time.RFC3339)),
			"source":      aws.String("memo-registry"),
		},
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", objectKey).Error("S3への書き込みに失敗")
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }
