// Where: internal/provisioner/aws_clients.go
// What: AWS SDK adapters behind the provisioner ports.
// Why: Map SDK-free deploy inputs to SDK types in one place.
package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretstypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
)

// ErrSecretNotFound marks an unresolvable secret reference.
var ErrSecretNotFound = errors.New("provisioner: secret not found")

type awsSecretsClient struct {
	client *secretsmanager.Client
}

func (c awsSecretsClient) SecretARN(ctx context.Context, name string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("secretsmanager client is nil")
	}
	out, err := c.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *secretstypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("describe secret %s: %w", name, err)
	}
	return aws.ToString(out.ARN), nil
}

const lambdaTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "lambda.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

const basicExecutionPolicyARN = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"

type awsIAMClient struct {
	client *iam.Client
}

func (c awsIAMClient) EnsureRole(ctx context.Context, name string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("iam client is nil")
	}
	created, err := c.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(lambdaTrustPolicy),
	})
	if err == nil {
		if _, err := c.client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  aws.String(name),
			PolicyArn: aws.String(basicExecutionPolicyARN),
		}); err != nil {
			return "", fmt.Errorf("attach execution policy to %s: %w", name, err)
		}
		return aws.ToString(created.Role.Arn), nil
	}

	var exists *iamtypes.EntityAlreadyExistsException
	if !errors.As(err, &exists) {
		return "", fmt.Errorf("create role %s: %w", name, err)
	}
	existing, err := c.client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("get role %s: %w", name, err)
	}
	return aws.ToString(existing.Role.Arn), nil
}

func (c awsIAMClient) PutReadPolicy(ctx context.Context, roleName, policyName string, secretARNs []string) error {
	if c.client == nil {
		return fmt.Errorf("iam client is nil")
	}
	document, err := buildReadPolicy(secretARNs)
	if err != nil {
		return err
	}
	_, err = c.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(roleName),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(document),
	})
	if err != nil {
		return fmt.Errorf("put policy %s on %s: %w", policyName, roleName, err)
	}
	return nil
}

// buildReadPolicy renders a least-privilege document: GetSecretValue only,
// resources limited to the given ARNs.
func buildReadPolicy(secretARNs []string) (string, error) {
	if len(secretARNs) == 0 {
		return "", fmt.Errorf("read policy requires at least one secret arn")
	}
	document := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":   "Allow",
				"Action":   []string{"secretsmanager:GetSecretValue"},
				"Resource": secretARNs,
			},
		},
	}
	encoded, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("encode policy: %w", err)
	}
	return string(encoded), nil
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) Upload(ctx context.Context, bucket, key string, body []byte) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

type awsLambdaClient struct {
	client *lambda.Client
}

func (c awsLambdaClient) Deploy(ctx context.Context, input FunctionDeployInput) error {
	if c.client == nil {
		return fmt.Errorf("lambda client is nil")
	}

	code := &lambdatypes.FunctionCode{}
	if input.Code.S3Bucket != "" {
		code.S3Bucket = aws.String(input.Code.S3Bucket)
		code.S3Key = aws.String(input.Code.S3Key)
	} else {
		code.ZipFile = input.Code.Zip
	}

	_, err := c.client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(input.Name),
		Role:         aws.String(input.RoleARN),
		Handler:      aws.String(input.Handler),
		Runtime:      lambdatypes.Runtime(input.Runtime),
		Timeout:      aws.Int32(input.TimeoutSeconds),
		MemorySize:   aws.Int32(input.MemorySize),
		Environment:  &lambdatypes.Environment{Variables: input.Environment},
		TracingConfig: &lambdatypes.TracingConfig{
			Mode: tracingModeOf(input.Tracing),
		},
		Layers: input.LayerARNs,
		Code:   code,
	})
	if err == nil {
		return nil
	}

	var conflict *lambdatypes.ResourceConflictException
	if !errors.As(err, &conflict) {
		return fmt.Errorf("create function %s: %w", input.Name, err)
	}
	return c.updateExisting(ctx, input)
}

// tracingModeOf maps the declared mode onto the SDK's. An undeclared mode
// means tracing stays off.
func tracingModeOf(mode manifest.TracingMode) lambdatypes.TracingMode {
	if mode == "" {
		mode = manifest.TracingPassThrough
	}
	return lambdatypes.TracingMode(mode)
}

func (c awsLambdaClient) updateExisting(ctx context.Context, input FunctionDeployInput) error {
	codeInput := &lambda.UpdateFunctionCodeInput{FunctionName: aws.String(input.Name)}
	if input.Code.S3Bucket != "" {
		codeInput.S3Bucket = aws.String(input.Code.S3Bucket)
		codeInput.S3Key = aws.String(input.Code.S3Key)
	} else {
		codeInput.ZipFile = input.Code.Zip
	}
	if _, err := c.client.UpdateFunctionCode(ctx, codeInput); err != nil {
		return fmt.Errorf("update function code %s: %w", input.Name, err)
	}

	_, err := c.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(input.Name),
		Role:         aws.String(input.RoleARN),
		Handler:      aws.String(input.Handler),
		Runtime:      lambdatypes.Runtime(input.Runtime),
		Timeout:      aws.Int32(input.TimeoutSeconds),
		MemorySize:   aws.Int32(input.MemorySize),
		Environment:  &lambdatypes.Environment{Variables: input.Environment},
		TracingConfig: &lambdatypes.TracingConfig{
			Mode: tracingModeOf(input.Tracing),
		},
		Layers: input.LayerARNs,
	})
	if err != nil {
		return fmt.Errorf("update function configuration %s: %w", input.Name, err)
	}
	return nil
}

type awsLogsClient struct {
	client *cloudwatchlogs.Client
}

func (c awsLogsClient) EnsureRetention(ctx context.Context, logGroup string, days int32) error {
	if c.client == nil {
		return fmt.Errorf("cloudwatchlogs client is nil")
	}
	_, err := c.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(logGroup),
	})
	if err != nil {
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ResourceAlreadyExistsException" {
			return fmt.Errorf("create log group %s: %w", logGroup, err)
		}
	}
	_, err = c.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(logGroup),
		RetentionInDays: aws.Int32(days),
	})
	if err != nil {
		return fmt.Errorf("set retention on %s: %w", logGroup, err)
	}
	return nil
}
