package export

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// mockS3 records PutObject calls; other S3API methods are not used
type mockS3 struct {
	s3iface.S3API
	inputs      [][]byte
	keys        []string
	types       []string
	err         error
	hadDeadline bool
}

func (m *mockS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	_, m.hadDeadline = ctx.Deadline()
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.inputs = append(m.inputs, body)
	m.keys = append(m.keys, aws.StringValue(input.Key))
	m.types = append(m.types, aws.StringValue(input.ContentType))
	return &s3.PutObjectOutput{}, nil
}

func TestPublisher_Publish(t *testing.T) {
	mock := &mockS3{}
	p := NewPublisher(mock, "renders", "scenes/default")

	key, err := p.Publish(context.Background(), "render.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if key != "scenes/default/render.png" {
		t.Errorf("Expected prefixed key, got %q", key)
	}
	if len(mock.inputs) != 1 || string(mock.inputs[0]) != "png-bytes" {
		t.Errorf("Unexpected uploaded body: %q", mock.inputs)
	}
	if mock.types[0] != "image/png" {
		t.Errorf("Expected content type image/png, got %q", mock.types[0])
	}
	if !mock.hadDeadline {
		t.Error("Expected upload context to carry a deadline")
	}
}

func TestPublisher_NoPrefix(t *testing.T) {
	p := NewPublisher(&mockS3{}, "renders", "")
	if got := p.Key("a.ppm"); got != "a.ppm" {
		t.Errorf("Expected bare key, got %q", got)
	}
}

func TestPublisher_UploadError(t *testing.T) {
	uploadErr := errors.New("access denied")
	p := NewPublisher(&mockS3{err: uploadErr}, "renders", "")

	_, err := p.Publish(context.Background(), "render.png", nil, "image/png")
	if !errors.Is(err, uploadErr) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	_, err := NewS3Publisher(S3Config{Region: "us-east-1"})
	if !errors.Is(err, ErrMissingBucket) {
		t.Errorf("Expected ErrMissingBucket, got %v", err)
	}
}

func TestNewS3Publisher(t *testing.T) {
	p, err := NewS3Publisher(S3Config{
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "renders",
	})
	if err != nil {
		t.Fatalf("NewS3Publisher: %v", err)
	}
	if p.bucket != "renders" {
		t.Errorf("Expected bucket renders, got %q", p.bucket)
	}
}
