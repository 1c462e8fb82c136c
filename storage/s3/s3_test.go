package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dataflow/storage"
)

// fakeAPI keeps objects in memory and pages listings two at a time.
type fakeAPI struct {
	objects map[string][]byte
	headErr error
}

func newFakeAPI() *fakeAPI { return &fakeAPI{objects: map[string][]byte{}} }

func (f *fakeAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+2, len(keys))
	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k])))})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprint(end))
	}
	return out, nil
}

func TestStorage_PrefixedKeys(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, "bucket", "/jobs/42/")
	ctx := context.Background()

	if err := s.Upload(ctx, "out/part-0", strings.NewReader("data")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, ok := api.objects["jobs/42/out/part-0"]; !ok {
		t.Fatalf("expected prefixed key, got %v", api.objects)
	}

	rc, err := s.Download(ctx, "out/part-0")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "data" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestStorage_DownloadMissing(t *testing.T) {
	s := NewWithClient(newFakeAPI(), "bucket", "")
	_, err := s.Download(context.Background(), "out/part-0")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFactoryRequiresConfig(t *testing.T) {
	_, err := storage.New(storage.Config{Provider: storage.ProviderS3}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "s3 provider config is required") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestStorage_Exists(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, "bucket", "")
	ctx := context.Background()

	if ok, err := s.Exists(ctx, "missing"); ok || err != nil {
		t.Errorf("expected (false, nil) for missing key, got (%v, %v)", ok, err)
	}
	_ = s.Upload(ctx, "present", strings.NewReader("x"))
	if ok, err := s.Exists(ctx, "present"); !ok || err != nil {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}

	api.headErr = fmt.Errorf("access denied")
	if _, err := s.Exists(ctx, "present"); err == nil {
		t.Error("expected non-404 error to be returned")
	}
}

func TestStorage_ListPages(t *testing.T) {
	api := newFakeAPI()
	s := NewWithClient(api, "bucket", "p")
	ctx := context.Background()
	for _, k := range []string{"out/c", "out/a", "out/b", "other/d"} {
		_ = s.Upload(ctx, k, strings.NewReader(k))
	}

	files, err := s.List(ctx, "out/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"out/a", "out/b", "out/c"}, paths); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Bucket: "b", Region: "eu-west-1"}, false},
		{"missing bucket", Config{Region: "eu-west-1"}, true},
		{"half credentials", Config{Bucket: "b", Region: "r", AccessKey: "AK"}, true},
		{"bad endpoint", Config{Bucket: "b", Region: "r", Endpoint: "::minio"}, true},
		{"minio endpoint", Config{Bucket: "b", Region: "r", Endpoint: "http://localhost:9000"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var c Config
	c.ApplyDefaults()
	if c.Region != DefaultRegion {
		t.Errorf("expected default region, got %q", c.Region)
	}
}

func TestConfigLocation(t *testing.T) {
	tests := map[string]Config{
		"s3://results":          {Bucket: "results"},
		"s3://results/tasks/q1": {Bucket: "results", Prefix: "/tasks/q1/"},
	}
	for want, cfg := range tests {
		if got := cfg.Location(); got != want {
			t.Errorf("Location() = %q, want %q", got, want)
		}
	}
}
