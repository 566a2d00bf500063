package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/stillmind/stillmind/internal/server/config"
)

func newContentSvc() *ContentService {
	return NewContentService(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "stillmind-audio",
	})
}

func withPresignSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignGetObject = origGet
	})
}

func TestGetPresignedGetUrl_Success(t *testing.T) {
	withPresignSeams(t)
	svc := newContentSvc()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not set: %+v", opts.BaseEndpoint)
		}
		return &s3.Client{}
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Bucket != "stillmind-audio" || *in.Key != "sessions/calm.mp3" {
			t.Fatalf("unexpected input: %+v", in)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed.example/x"}, nil
	}

	url, err := svc.GetPresignedGetUrl(context.Background(), "sessions/calm.mp3")
	if err != nil {
		t.Fatalf("GetPresignedGetUrl error: %v", err)
	}
	if url != "http://signed.example/x" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestGetPresignedGetUrl_ConfigError(t *testing.T) {
	withPresignSeams(t)
	svc := newContentSvc()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	if _, err := svc.GetPresignedGetUrl(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPresignedGetUrl_PresignError(t *testing.T) {
	withPresignSeams(t)
	svc := newContentSvc()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign down")
	}

	if _, err := svc.GetPresignedGetUrl(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}
