package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"tank-tools/internal/config"
)

// ErrInvalidLocation is returned for malformed s3:// locations
var ErrInvalidLocation = errors.New("invalid s3 location")

// Location is a parsed input location, either a local path or an S3 object
type Location struct {
	Path   string
	Bucket string
	Key    string
}

// IsS3 reports whether the location points to an S3 object
func (l Location) IsS3() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// Parse splits an input into a local path or an S3 bucket and key
func Parse(input string) (Location, error) {
	if !strings.HasPrefix(input, "s3://") {
		return Location{Path: input}, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return Location{}, fmt.Errorf("%w %q: %v", ErrInvalidLocation, input, err)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("%w %q: expected s3://bucket/key", ErrInvalidLocation, input)
	}

	return Location{Bucket: u.Host, Key: key}, nil
}

// ObjectGetter is the part of the S3 API used to fetch inputs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener opens local files and S3 objects. The S3 client is created on the
// first s3:// input
type Opener struct {
	aws    config.AWSConfig
	logger log.Logger
	client ObjectGetter
}

// NewOpener creates an opener using cfg for s3:// inputs
func NewOpener(cfg config.AWSConfig, logger log.Logger) *Opener {
	return &Opener{
		aws:    cfg,
		logger: logger,
	}
}

// NewOpenerWithClient creates an opener fetching S3 objects through client
func NewOpenerWithClient(client ObjectGetter, logger log.Logger) *Opener {
	return &Opener{
		logger: logger,
		client: client,
	}
}

// Open returns a reader for input. The caller closes it
func (o *Opener) Open(ctx context.Context, input string) (io.ReadCloser, error) {
	loc, err := Parse(input)
	if err != nil {
		return nil, err
	}

	if !loc.IsS3() {
		level.Debug(o.logger).Log("msg", "Opening local file", "path", loc.Path)

		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	if o.client == nil {
		client, err := NewS3Client(ctx, o.aws)
		if err != nil {
			return nil, err
		}
		o.client = client
	}

	level.Info(o.logger).Log("msg", "Fetching S3 object", "bucket", loc.Bucket, "key", loc.Key)

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", loc, err)
	}

	if out.ContentLength != nil {
		level.Debug(o.logger).Log("msg", "S3 object opened", "location", loc.String(), "bytes", *out.ContentLength)
	}

	return out.Body, nil
}

// NewS3Client creates an S3 client. Without static keys the SDK default
// credential chain (env, shared credentials, IAM role) is used
func NewS3Client(ctx context.Context, cfg config.AWSConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
