package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/perplexiplay/backend/internal/common/config"
)

var loadAWSConfig = awsconfig.LoadDefaultConfig

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink stores each document as a JSON object under <collection>/user_<id>.json.
type S3Sink struct {
	client     objectPutter
	bucket     string
	collection string
}

var _ Sink = (*S3Sink)(nil)

func NewS3Sink(ctx context.Context, cfg config.MirrorConfig) (*S3Sink, error) {
	awsCfg, err := loadAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithSharedCredentialsFiles([]string{cfg.CredentialsPath}),
	)
	if err != nil {
		return nil, fmt.Errorf("load mirror credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Sink(client, cfg.Bucket, cfg.Collection), nil
}

func newS3Sink(client objectPutter, bucket, collection string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, collection: collection}
}

func (s *S3Sink) Save(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode mirror document: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(doc.UserID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put mirror document: %w", err)
	}
	return nil
}

func (s *S3Sink) objectKey(userID string) string {
	return path.Join(s.collection, "user_"+userID+".json")
}
