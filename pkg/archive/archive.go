// Package archive pushes dataset runs to S3 and pulls them back, keeping a
// latest.json pointer so consumers can find the most recent run without
// listing the whole bucket.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonboulle/clockwork"
)

const (
	// LatestPointerKey names the pointer object holding the newest run
	// prefix.
	LatestPointerKey = "latest.json"

	// runPrefixFormat is the timestamp layout used for run prefixes, chosen
	// so lexical order matches chronological order.
	runPrefixFormat = "2006-01-02T15-04-05Z"
)

// ObjectClient is the slice of the S3 API the archiver needs. The concrete
// *s3.Client satisfies it.
type ObjectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Config struct {
	Logger *slog.Logger
	Client ObjectClient
	Clock  clockwork.Clock

	Bucket string
	Region string

	// Anonymous selects unsigned requests for public-bucket pulls. Ignored
	// when Client is set.
	Anonymous bool
}

func (c *Config) Validate(ctx context.Context) error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Client == nil {
		if c.Anonymous {
			// Explicit anonymous credentials keep the SDK from walking the
			// credential chain for public buckets.
			c.Client = s3.New(s3.Options{
				Region:      c.Region,
				Credentials: aws.AnonymousCredentials{},
			})
			return nil
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		c.Client = s3.NewFromConfig(awsCfg)
	}
	return nil
}

// Archiver stores and retrieves dataset runs.
type Archiver struct {
	log    *slog.Logger
	client ObjectClient
	clock  clockwork.Clock
	bucket string
}

func New(ctx context.Context, cfg Config) (*Archiver, error) {
	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Archiver{
		log:    cfg.Logger,
		client: cfg.Client,
		clock:  cfg.Clock,
		bucket: cfg.Bucket,
	}, nil
}

// PushDir uploads every regular file under dir to a fresh timestamped run
// prefix and updates the latest pointer. It returns the run prefix.
func (a *Archiver) PushDir(ctx context.Context, dir string) (string, error) {
	prefix := a.clock.Now().UTC().Format(runPrefixFormat)

	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(prefix, filepath.ToSlash(rel))

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		a.log.Debug("Uploaded object", "key", key)
		uploaded++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("push %s: %w", dir, err)
	}
	if uploaded == 0 {
		return "", fmt.Errorf("no files under %s", dir)
	}

	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(LatestPointerKey),
		Body:   strings.NewReader(prefix),
	}); err != nil {
		return "", fmt.Errorf("update %s: %w", LatestPointerKey, err)
	}

	a.log.Info("Pushed dataset run", "bucket", a.bucket, "prefix", prefix, "files", uploaded)
	return prefix, nil
}

// Latest returns the newest run prefix, listing the bucket first and
// falling back to the latest pointer when listing is not permitted.
func (a *Archiver) Latest(ctx context.Context) (string, error) {
	prefix, listErr := a.findLatestPrefix(ctx)
	if listErr == nil && prefix != "" {
		return prefix, nil
	}

	prefix, ptrErr := a.fetchLatestPointer(ctx)
	if ptrErr != nil {
		if listErr != nil {
			return "", fmt.Errorf("list bucket failed: %w; %s fallback also failed: %v", listErr, LatestPointerKey, ptrErr)
		}
		return "", fmt.Errorf("no runs in bucket %s", a.bucket)
	}
	return prefix, nil
}

// Pull downloads every object under the given run prefix into dir. An
// empty prefix pulls the latest run. It returns the prefix pulled.
func (a *Archiver) Pull(ctx context.Context, prefix, dir string) (string, error) {
	if prefix == "" {
		latest, err := a.Latest(ctx)
		if err != nil {
			return "", err
		}
		prefix = latest
	}

	keys, err := a.listKeys(ctx, prefix+"/")
	if err != nil {
		return "", fmt.Errorf("list %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("no objects under prefix %s", prefix)
	}

	for _, key := range keys {
		if err := a.downloadObject(ctx, key, prefix, dir); err != nil {
			return "", err
		}
	}

	a.log.Info("Pulled dataset run", "bucket", a.bucket, "prefix", prefix, "files", len(keys), "dir", dir)
	return prefix, nil
}

func (a *Archiver) downloadObject(ctx context.Context, key, prefix, dir string) error {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	rel := strings.TrimPrefix(key, prefix+"/")
	dest := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	a.log.Debug("Downloaded object", "key", key, "dest", dest)
	return nil
}

func (a *Archiver) findLatestPrefix(ctx context.Context) (string, error) {
	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return "", err
	}

	var prefixes []string
	for _, p := range out.CommonPrefixes {
		if p.Prefix != nil {
			prefixes = append(prefixes, strings.TrimSuffix(*p.Prefix, "/"))
		}
	}
	if len(prefixes) == 0 {
		return "", nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(prefixes)))
	return prefixes[0], nil
}

func (a *Archiver) fetchLatestPointer(ctx context.Context) (string, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(LatestPointerKey),
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", LatestPointerKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", err
	}
	prefix := strings.TrimSpace(string(data))
	if prefix == "" {
		return "", fmt.Errorf("empty %s pointer", LatestPointerKey)
	}
	return prefix, nil
}

func (a *Archiver) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

// RunTimestamp parses a run prefix back into its capture time.
func RunTimestamp(prefix string) (time.Time, error) {
	return time.Parse(runPrefixFormat, prefix)
}
