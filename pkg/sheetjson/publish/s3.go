package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// S3API is the subset of the S3 client used by S3Publisher.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher publishes objects to an S3 bucket.
type S3Publisher struct {
	client S3API
	bucket string
	prefix string
	log    logrus.FieldLogger
}

// S3Options configures NewS3Publisher.
type S3Options struct {
	Bucket string
	// Prefix is prepended to every key.
	Prefix string
	// Region overrides the region from the environment.
	Region string
	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string
	Logger   logrus.FieldLogger
}

// NewS3Publisher creates a publisher using the default AWS credential chain.
func NewS3Publisher(ctx context.Context, opts S3Options) (*S3Publisher, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 publisher requires a bucket")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3PublisherWithClient(client, opts), nil
}

// NewS3PublisherWithClient creates a publisher over an existing client.
func NewS3PublisherWithClient(client S3API, opts S3Options) *S3Publisher {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &S3Publisher{
		client: client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		log:    log,
	}
}

func (p *S3Publisher) key(k string) string {
	if p.prefix == "" {
		return k
	}
	return path.Join(p.prefix, k)
}

// StoredTimestamp returns the timestamp recorded on the stored object. found is false when
// the object does not exist or carries no usable timestamp.
func (p *S3Publisher) StoredTimestamp(ctx context.Context, key string) (ts int64, found bool, err error) {
	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("s3 head %s/%s: %w", p.bucket, p.key(key), err)
	}
	ts, found = parseTimestamp(p.log, key, out.Metadata[MetadataKey])
	return ts, found, nil
}

// Publish implements Publisher.
func (p *S3Publisher) Publish(ctx context.Context, obj Object) (bool, error) {
	stored, found, err := p.StoredTimestamp(ctx, obj.Key)
	if err != nil {
		return false, err
	}

	log := p.log.WithFields(logrus.Fields{"bucket": p.bucket, "key": p.key(obj.Key), "timestamp": obj.Timestamp})
	if !shouldWrite(stored, found, obj.Timestamp) {
		log.WithField("stored_timestamp", stored).Info("Stored object is current, skipping")
		return false, nil
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.key(obj.Key)),
		Body:        bytes.NewReader(obj.Body),
		ContentType: aws.String(obj.ContentType),
		Metadata:    map[string]string{MetadataKey: strconv.FormatInt(obj.Timestamp, 10)},
	})
	if err != nil {
		return false, fmt.Errorf("s3 put %s/%s: %w", p.bucket, p.key(obj.Key), err)
	}
	log.WithField("bytes", len(obj.Body)).Info("Published object")
	return true, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
