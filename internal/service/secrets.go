// Where: internal/service/secrets.go
// What: API key resolution at function start.
// Why: Reference mode keeps the key out of static configuration; it is fetched once at cold start.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/amberflo/sbt-aws-amberflo/internal/constants"
)

// SecretsAPI is the slice of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveAPIKey returns the provider key from the environment (direct
// mode) or from the referenced secret (reference mode).
func ResolveAPIKey(ctx context.Context, secrets SecretsAPI) (string, error) {
	if key := os.Getenv(constants.EnvAmberfloAPIKey); key != "" {
		return key, nil
	}

	secretName := os.Getenv(constants.EnvAPIKeySecretName)
	fieldID := os.Getenv(constants.EnvAPIKeySecretID)
	if secretName == "" || fieldID == "" {
		return "", fmt.Errorf("service: no credential configured: set %s or %s/%s",
			constants.EnvAmberfloAPIKey, constants.EnvAPIKeySecretName, constants.EnvAPIKeySecretID)
	}
	if secrets == nil {
		return "", fmt.Errorf("service: secrets client not configured")
	}

	out, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", fmt.Errorf("service: fetch secret %s: %w", secretName, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("service: secret %s has no string value", secretName)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &fields); err != nil {
		return "", fmt.Errorf("service: decode secret %s: %w", secretName, err)
	}
	key, ok := fields[fieldID]
	if !ok || key == "" {
		return "", fmt.Errorf("service: secret %s has no field %s", secretName, fieldID)
	}
	return key, nil
}
