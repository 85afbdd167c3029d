package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"paimon-cli/internal/config"
	"paimon-cli/internal/history"
)

// DefaultRegion is used when the configuration does not name one.
const DefaultRegion = "us-east-1"

// S3API defines the interface for the S3 client, allowing for mock implementations.
type S3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3FileIO reads a warehouse stored under a bucket prefix.
type S3FileIO struct {
	client S3API
	bucket string
	prefix string

	// requestTimeout bounds each S3 call; zero leaves only the caller's deadline.
	requestTimeout time.Duration
}

// NewS3 builds an S3 client from the connection options of cfg. Static
// credentials are used when both keys are present, otherwise the default
// AWS credential chain applies.
func NewS3(ctx context.Context, cfg history.StorageConfig) (*S3FileIO, error) {
	bucket, prefix, err := ParseS3URI(cfg.Warehouse)
	if err != nil {
		return nil, err
	}

	region := cfg.Option(history.OptionRegion)
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}

	accessKey, secretKey := cfg.Option(history.OptionAccessKey), cfg.Option(history.OptionSecretKey)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, NewConfigurationError("unable to load AWS config", err)
	}

	endpoint := NormalizeEndpoint(cfg.Option(history.OptionEndpoint))
	pathStyle := cfg.Option(history.OptionPathStyleAccess) != "false"
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return NewS3FromClient(client, bucket, prefix), nil
}

// NewS3FromClient wraps an existing client.
func NewS3FromClient(client S3API, bucket, prefix string) *S3FileIO {
	return &S3FileIO{
		client:         client,
		bucket:         bucket,
		prefix:         strings.Trim(prefix, "/"),
		requestTimeout: config.DefaultTimeouts().Storage,
	}
}

// WithRequestTimeout sets the per-request timeout.
func (s *S3FileIO) WithRequestTimeout(d time.Duration) *S3FileIO {
	s.requestTimeout = d
	return s
}

func (s *S3FileIO) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

// ParseS3URI splits an s3://, s3a:// or s3n:// URI into bucket and key prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest := ""
	for _, scheme := range []string{"s3://", "s3a://", "s3n://"} {
		if strings.HasPrefix(uri, scheme) {
			rest = strings.TrimPrefix(uri, scheme)
			break
		}
	}
	if rest == "" {
		return "", "", NewConfigurationError(fmt.Sprintf("invalid S3 path: %q", uri), nil)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", NewConfigurationError(fmt.Sprintf("S3 path has no bucket: %q", uri), nil)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// NormalizeEndpoint adds an https scheme to endpoints given as host[:port].
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

func (s *S3FileIO) key(p string) string {
	p = cleanPath(p)
	switch {
	case s.prefix == "":
		return p
	case p == "":
		return s.prefix
	default:
		return s.prefix + "/" + p
	}
}

// relative converts an object key back to a warehouse relative path.
func (s *S3FileIO) relative(key string) string {
	key = strings.TrimSuffix(key, "/")
	if s.prefix != "" {
		key = strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
	}
	return key
}

func (s *S3FileIO) dirPrefix(p string) string {
	k := s.key(p)
	if k == "" {
		return ""
	}
	return k + "/"
}

func (s *S3FileIO) ReadFile(ctx context.Context, p string) ([]byte, error) {
	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		return nil, wrapS3Error("read", p, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, NewIOError("read", p, err)
	}
	return data, nil
}

func (s *S3FileIO) Exists(ctx context.Context, p string) (bool, error) {
	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	if cleanPath(p) != "" {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(p)),
		})
		if err == nil {
			return true, nil
		}
		if !isS3NotFound(err) {
			return false, NewIOError("exists", p, err)
		}
	}

	// Directories only exist as key prefixes
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirPrefix(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, wrapS3Error("exists", p, err)
	}
	return len(out.Contents) > 0 || len(out.CommonPrefixes) > 0, nil
}

func (s *S3FileIO) ListDir(ctx context.Context, dir string) ([]FileStatus, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.dirPrefix(dir)),
		Delimiter: aws.String("/"),
	})

	var statuses []FileStatus
	for paginator.HasMorePages() {
		page, err := s.nextPage(ctx, paginator)
		if err != nil {
			return nil, wrapS3Error("list", dir, err)
		}
		for _, cp := range page.CommonPrefixes {
			statuses = append(statuses, FileStatus{
				Path:  s.relative(aws.ToString(cp.Prefix)),
				IsDir: true,
			})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			statuses = append(statuses, objectStatus(s.relative(key), obj))
		}
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Path < statuses[j].Path })
	return statuses, nil
}

func (s *S3FileIO) ListFiles(ctx context.Context, root string) ([]FileStatus, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.dirPrefix(root)),
	})

	var statuses []FileStatus
	for paginator.HasMorePages() {
		page, err := s.nextPage(ctx, paginator)
		if err != nil {
			return nil, wrapS3Error("walk", root, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			statuses = append(statuses, objectStatus(s.relative(key), obj))
		}
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Path < statuses[j].Path })
	return statuses, nil
}

func (s *S3FileIO) nextPage(ctx context.Context, paginator *s3.ListObjectsV2Paginator) (*s3.ListObjectsV2Output, error) {
	ctx, cancel := s.requestContext(ctx)
	defer cancel()
	return paginator.NextPage(ctx)
}

func (s *S3FileIO) Close() error {
	return nil
}

func objectStatus(p string, obj types.Object) FileStatus {
	return FileStatus{
		Path:    p,
		Size:    aws.ToInt64(obj.Size),
		ModTime: aws.ToTime(obj.LastModified),
	}
}

func wrapS3Error(op, p string, err error) error {
	if isS3NotFound(err) {
		return NewNotFoundError(op, p)
	}
	return NewIOError(op, p, err)
}

// isS3NotFound reports whether err means the object or bucket is missing.
func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}

	// HeadObject returns a bare 404 without a typed error
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
