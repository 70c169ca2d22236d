// Where: cmd/metering-service/main.go
// What: Metering service Lambda entrypoint.
// Why: Wire secrets, the provider client, and the dispatcher at cold start.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
	"github.com/amberflo/sbt-aws-amberflo/internal/amberflo"
	"github.com/amberflo/sbt-aws-amberflo/internal/constants"
	"github.com/amberflo/sbt-aws-amberflo/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load aws config:", err)
		os.Exit(1)
	}

	apiKey, err := service.ResolveAPIKey(ctx, secretsmanager.NewFromConfig(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	baseURL := os.Getenv(constants.EnvAmberfloBaseURL)
	if baseURL == "" {
		baseURL = adapter.DefaultBaseURL
	}

	svc := service.New(amberflo.New(baseURL, apiKey))
	lambda.Start(svc.Handle)
}
