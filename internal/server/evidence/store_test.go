package evidence

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/fieldreport/internal/server/config"
)

func testStore() *Store {
	return NewStore(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Bucket:       "evidence",
	})
}

func stubAWSConfig(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origDelete := deleteObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		deleteObject = origDelete
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestGetRandomStorageKey(t *testing.T) {
	k1 := GetRandomStorageKey()
	k2 := GetRandomStorageKey()

	if !strings.HasPrefix(k1, "evidence/") {
		t.Fatalf("unexpected key prefix: %q", k1)
	}
	if k1 == k2 {
		t.Fatalf("keys must be unique, got %q twice", k1)
	}
}

func TestGetClient_AppliesEndpointAndPathStyle(t *testing.T) {
	stubAWSConfig(t)

	var capturedBaseEndpoint string
	var capturedPathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			capturedBaseEndpoint = *opts.BaseEndpoint
		}
		capturedPathStyle = opts.UsePathStyle
		return &s3.Client{}
	}

	s := testStore()
	if _, err := s.getClient(); err != nil {
		t.Fatalf("getClient err: %v", err)
	}
	if capturedBaseEndpoint != "http://127.0.0.1:9000/" {
		t.Fatalf("BaseEndpoint mismatch: %q", capturedBaseEndpoint)
	}
	if !capturedPathStyle {
		t.Fatalf("expected path-style addressing")
	}
}

func TestPut_UploadsAndReturnsKey(t *testing.T) {
	stubAWSConfig(t)

	var capturedBucket, capturedKey string
	var capturedBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		capturedBucket = *in.Bucket
		capturedKey = *in.Key
		b, err := io.ReadAll(in.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		capturedBody = b
		return &s3.PutObjectOutput{}, nil
	}

	s := testStore()
	key, err := s.Put(context.Background(), []byte("payload"))
	if err != nil {
		t.Fatalf("Put err: %v", err)
	}
	if key != capturedKey {
		t.Fatalf("returned key %q but uploaded under %q", key, capturedKey)
	}
	if capturedBucket != "evidence" {
		t.Fatalf("bucket mismatch: %q", capturedBucket)
	}
	if string(capturedBody) != "payload" {
		t.Fatalf("body mismatch: %q", capturedBody)
	}
}

func TestPut_UploadError(t *testing.T) {
	stubAWSConfig(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}

	s := testStore()
	if _, err := s.Put(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDelete_RemovesObject(t *testing.T) {
	stubAWSConfig(t)

	var capturedKey string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		capturedKey = *in.Key
		return &s3.DeleteObjectOutput{}, nil
	}

	s := testStore()
	if err := s.Delete(context.Background(), "evidence/2026/8/28/abc"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if capturedKey != "evidence/2026/8/28/abc" {
		t.Fatalf("key mismatch: %q", capturedKey)
	}
}

func TestPresignGetURL(t *testing.T) {
	stubAWSConfig(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/evidence/abc?sig=x"}, nil
	}

	s := testStore()
	url, err := s.PresignGetURL(context.Background(), "evidence/abc")
	if err != nil {
		t.Fatalf("PresignGetURL err: %v", err)
	}
	if url != "http://127.0.0.1:9000/evidence/abc?sig=x" {
		t.Fatalf("url mismatch: %q", url)
	}
}
