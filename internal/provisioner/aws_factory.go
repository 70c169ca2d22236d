// Where: internal/provisioner/aws_factory.go
// What: AWS client factory for the provisioner.
// Why: Encapsulate SDK configuration so the apply sequence stays SDK-free.
package provisioner

import (
	"context"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const defaultAWSRegion = "us-east-1"

type awsClientFactory struct {
	region string

	mu  sync.Mutex
	cfg *aws.Config
}

// NewAWSClientFactory returns a factory that loads the default AWS
// configuration once and shares it across service clients.
func NewAWSClientFactory(region string) ClientFactory {
	return &awsClientFactory{region: region}
}

func (f *awsClientFactory) load(ctx context.Context) (aws.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg != nil {
		return *f.cfg, nil
	}

	region := f.region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = defaultAWSRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, err
	}
	f.cfg = &cfg
	return cfg, nil
}

func (f *awsClientFactory) Secrets(ctx context.Context) (SecretsAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return awsSecretsClient{client: secretsmanager.NewFromConfig(cfg)}, nil
}

func (f *awsClientFactory) IAM(ctx context.Context) (IAMAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return awsIAMClient{client: iam.NewFromConfig(cfg)}, nil
}

func (f *awsClientFactory) S3(ctx context.Context) (S3API, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return awsS3Client{client: s3.NewFromConfig(cfg)}, nil
}

func (f *awsClientFactory) Lambda(ctx context.Context) (LambdaAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return awsLambdaClient{client: lambda.NewFromConfig(cfg)}, nil
}

func (f *awsClientFactory) Logs(ctx context.Context) (LogsAPI, error) {
	cfg, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return awsLogsClient{client: cloudwatchlogs.NewFromConfig(cfg)}, nil
}
