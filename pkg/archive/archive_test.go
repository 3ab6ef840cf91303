package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type mockObjectClient struct {
	GetObjectFunc     func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObjectFunc     func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2Func func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func (m *mockObjectClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

func (m *mockObjectClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

func (m *mockObjectClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.ListObjectsV2Func(ctx, params, optFns...)
}

func testArchiveLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestArchiver(t *testing.T, client ObjectClient) *Archiver {
	t.Helper()
	a, err := New(context.Background(), Config{
		Logger: testArchiveLogger(t),
		Client: client,
		Clock:  clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
		Bucket: "puppetmill-datasets",
	})
	require.NoError(t, err)
	return a
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := Config{Logger: testArchiveLogger(t), Client: &mockObjectClient{}}
	err := cfg.Validate(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bucket is required")

	cfg = Config{Client: &mockObjectClient{}, Bucket: "b"}
	err = cfg.Validate(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "logger is required")

	cfg = Config{Logger: testArchiveLogger(t), Client: &mockObjectClient{}, Bucket: "b"}
	require.NoError(t, cfg.Validate(context.Background()))
	require.Equal(t, "us-east-1", cfg.Region)
	require.NotNil(t, cfg.Clock)
}

func TestArchiver_PushDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataset.json"), []byte(`{"text":"x"}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "eval"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eval", "results.json"), []byte(`{}`), 0o644))

	puts := map[string]string{}
	client := &mockObjectClient{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			body, err := io.ReadAll(params.Body)
			require.NoError(t, err)
			puts[*params.Key] = string(body)
			return &s3.PutObjectOutput{}, nil
		},
	}

	a := newTestArchiver(t, client)
	prefix, err := a.PushDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, "2025-06-15T12-00-00Z", prefix)

	require.Len(t, puts, 3)
	require.Equal(t, `{"text":"x"}`, puts["2025-06-15T12-00-00Z/dataset.json"])
	require.Contains(t, puts, "2025-06-15T12-00-00Z/eval/results.json")
	require.Equal(t, prefix, puts[LatestPointerKey])
}

func TestArchiver_PushDir_Empty(t *testing.T) {
	t.Parallel()

	a := newTestArchiver(t, &mockObjectClient{
		PutObjectFunc: func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return &s3.PutObjectOutput{}, nil
		},
	})
	_, err := a.PushDir(context.Background(), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no files")
}

func TestArchiver_Latest_FromListing(t *testing.T) {
	t.Parallel()

	client := &mockObjectClient{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			require.Equal(t, "/", *params.Delimiter)
			return &s3.ListObjectsV2Output{
				CommonPrefixes: []types.CommonPrefix{
					{Prefix: aws.String("2025-06-14T09-00-00Z/")},
					{Prefix: aws.String("2025-06-15T12-00-00Z/")},
					{Prefix: aws.String("2025-06-13T08-00-00Z/")},
				},
			}, nil
		},
	}

	a := newTestArchiver(t, client)
	prefix, err := a.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06-15T12-00-00Z", prefix)
}

func TestArchiver_Latest_PointerFallback(t *testing.T) {
	t.Parallel()

	client := &mockObjectClient{
		ListObjectsV2Func: func(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, fmt.Errorf("AccessDenied")
		},
		GetObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			require.Equal(t, LatestPointerKey, *params.Key)
			return &s3.GetObjectOutput{
				Body: io.NopCloser(strings.NewReader("2025-06-15T12-00-00Z\n")),
			}, nil
		},
	}

	a := newTestArchiver(t, client)
	prefix, err := a.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06-15T12-00-00Z", prefix)
}

func TestArchiver_Pull(t *testing.T) {
	t.Parallel()

	objects := map[string]string{
		"2025-06-15T12-00-00Z/dataset.json":      `{"text":"x"}`,
		"2025-06-15T12-00-00Z/eval/results.json": `{}`,
	}

	client := &mockObjectClient{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			require.Equal(t, "2025-06-15T12-00-00Z/", *params.Prefix)
			var contents []types.Object
			for key := range objects {
				contents = append(contents, types.Object{Key: aws.String(key)})
			}
			return &s3.ListObjectsV2Output{Contents: contents}, nil
		},
		GetObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			body, ok := objects[*params.Key]
			require.True(t, ok, "unexpected key %s", *params.Key)
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
		},
	}

	dir := t.TempDir()
	a := newTestArchiver(t, client)
	prefix, err := a.Pull(context.Background(), "2025-06-15T12-00-00Z", dir)
	require.NoError(t, err)
	require.Equal(t, "2025-06-15T12-00-00Z", prefix)

	data, err := os.ReadFile(filepath.Join(dir, "dataset.json"))
	require.NoError(t, err)
	require.Equal(t, `{"text":"x"}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "eval", "results.json"))
	require.NoError(t, err)
}

func TestRunTimestamp(t *testing.T) {
	t.Parallel()

	ts, err := RunTimestamp("2025-06-15T12-00-00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), ts)

	_, err = RunTimestamp("not-a-run")
	require.Error(t, err)
}
