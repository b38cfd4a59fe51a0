package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"ngolib/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ImageStore keeps profile pictures as objects, one per user, under
// <prefix>/<user id>.png.
type S3ImageStore struct {
	client objectAPI
	bucket string
	prefix string
}

func NewS3ImageStore(client *s3.Client, bucket, prefix string) *S3ImageStore {
	return &S3ImageStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3ImageStore) key(userID int64) string {
	return path.Join(s.prefix, strconv.FormatInt(userID, 10)+".png")
}

// StoreImage uploads the picture, replacing any previous one. It reports one
// affected object.
func (s *S3ImageStore) StoreImage(ctx context.Context, userID int64, image []byte) (int64, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(userID)),
		Body:          bytes.NewReader(image),
		ContentLength: aws.Int64(int64(len(image))),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload profile image: %w", err)
	}

	return 1, nil
}

func (s *S3ImageStore) Image(ctx context.Context, userID int64) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(userID)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, types.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to download profile image: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile image: %w", err)
	}

	if len(data) == 0 {
		return nil, types.ErrImageNotFound
	}

	return data, nil
}
