// Where: internal/dispatch/aws.go
// What: AWS-backed invoker and ingest publisher.
// Why: Map capability handles onto Lambda invocation types and EventBridge events.
package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
)

const (
	ingestSource     = "sbt.metering"
	ingestDetailType = "ingestUsage"
)

// NewAWSInvoker builds an Invoker on the default AWS configuration.
func NewAWSInvoker(ctx context.Context, region string) (Invoker, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return awsInvoker{client: lambda.NewFromConfig(cfg)}, nil
}

type awsInvoker struct {
	client *lambda.Client
}

// Invoke maps the handle's style straight onto the Lambda invocation
// type: sync handles use RequestResponse, async handles use Event.
func (i awsInvoker) Invoke(ctx context.Context, handle adapter.Handle, payload []byte) (Result, error) {
	if i.client == nil {
		return Result{}, fmt.Errorf("lambda client is nil")
	}
	out, err := i.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(handle.FunctionName),
		InvocationType: lambdatypes.InvocationType(handle.Style),
		Payload:        payload,
	})
	if err != nil {
		return Result{}, fmt.Errorf("invoke %s: %w", handle.FunctionName, err)
	}
	if out.FunctionError != nil {
		return Result{}, fmt.Errorf("invoke %s: function error: %s", handle.FunctionName, aws.ToString(out.FunctionError))
	}
	return Result{
		StatusCode: out.StatusCode,
		Payload:    out.Payload,
		Async:      handle.Style == adapter.StyleAsync,
	}, nil
}

// NewAWSIngestPublisher builds an IngestPublisher on the default AWS
// configuration.
func NewAWSIngestPublisher(ctx context.Context, region string) (IngestPublisher, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return awsIngestPublisher{client: eventbridge.NewFromConfig(cfg)}, nil
}

type awsIngestPublisher struct {
	client *eventbridge.Client
}

func (p awsIngestPublisher) PublishIngest(ctx context.Context, busName string, detail []byte) error {
	if p.client == nil {
		return fmt.Errorf("eventbridge client is nil")
	}
	entry := eventbridgetypes.PutEventsRequestEntry{
		Source:     aws.String(ingestSource),
		DetailType: aws.String(ingestDetailType),
		Detail:     aws.String(string(detail)),
	}
	if busName != "" {
		entry.EventBusName = aws.String(busName)
	}
	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("publish ingest event: %w", err)
	}
	if out.FailedEntryCount > 0 {
		for _, result := range out.Entries {
			if result.ErrorMessage != nil {
				return fmt.Errorf("publish ingest event: %s", aws.ToString(result.ErrorMessage))
			}
		}
		return fmt.Errorf("publish ingest event: %d entries failed", out.FailedEntryCount)
	}
	return nil
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
