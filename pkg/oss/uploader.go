// Package oss uploads finished clip artifacts to Aliyun OSS.
package oss

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"go.uber.org/zap"

	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

type Uploader struct {
	client   *oss.Client
	bucket   string
	endpoint string
}

// NewUploader builds an OSS uploader from static credentials. The endpoint is
// also used to assemble the public object URL, so it must be the public one.
func NewUploader(endpoint, region, accessKeyId, accessKeySecret, bucket string) *Uploader {
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	return &Uploader{
		client:   oss.NewClient(cfg),
		bucket:   bucket,
		endpoint: endpoint,
	}
}

// Upload puts a local file under objectKey and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, localPath string, objectKey string) (string, error) {
	objectKey = strings.TrimPrefix(objectKey, "/")
	_, err := u.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(u.bucket),
		Key:    oss.Ptr(objectKey),
	}, localPath)
	if err != nil {
		log.GetLogger().Error("oss upload failed",
			zap.String("local", localPath), zap.String("key", objectKey), zap.Error(err))
		return "", apperrors.Wrap(apperrors.CodeStorageUploadFailed, "upload to oss failed", err)
	}

	url := u.publicURL(objectKey)
	log.GetLogger().Info("uploaded artifact to oss", zap.String("key", objectKey), zap.String("url", url))
	return url, nil
}

func (u *Uploader) publicURL(objectKey string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(u.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", u.bucket, host, objectKey)
}
