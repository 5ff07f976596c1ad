package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type apiError struct {
	code string
}

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// mockS3 is an in-memory S3 backend that pages two keys at a time
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &apiError{code: "NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if len(k) >= len(aws.ToString(in.Prefix)) && k[:len(aws.ToString(in.Prefix))] == aws.ToString(in.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	mock := newMockS3()
	s := NewS3Store(mock, "bucket", "radio/")

	if err := s.Save(ctx, ObjectName("ep1"), "uno"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := mock.objects["radio/ep1_transcript.txt"]; !ok {
		t.Fatalf("object stored under wrong key: %v", mock.objects)
	}
	if ok, err := s.Exists(ctx, ObjectName("ep1")); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if ok, err := s.Exists(ctx, ObjectName("ep9")); err != nil || ok {
		t.Fatalf("Exists missing = %v, %v", ok, err)
	}
	got, err := s.Load(ctx, ObjectName("ep1"))
	if err != nil || got != "uno" {
		t.Fatalf("Load = %q, %v", got, err)
	}
	if _, err := s.Load(ctx, ObjectName("ep9")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load missing = %v", err)
	}
}

func TestS3StoreListPages(t *testing.T) {
	ctx := context.Background()
	mock := newMockS3()
	s := NewS3Store(mock, "bucket", "radio")
	for _, n := range []string{"c", "a", "b", "d"} {
		s.Save(ctx, ObjectName(n), n)
	}
	s.Save(ctx, "combined.txt", "all")
	mock.objects["other/x_transcript.txt"] = []byte("x")

	names, err := s.List(ctx, TranscriptSuffix)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a_transcript.txt", "b_transcript.txt", "c_transcript.txt", "d_transcript.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
}
