// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Metering service runtime configuration. These names are part of the
	// deployed function's contract shared with the handler and must not drift.
	EnvAPIKeySecretName = "API_KEY_SECRET_NAME"
	EnvAPIKeySecretID   = "API_KEY_SECRET_ID"
	EnvAmberfloBaseURL  = "AMBERFLO_BASE_URL"
	EnvAmberfloAPIKey   = "AMBERFLO_API_KEY"

	// CLI Configuration
	EnvConfigPath     = "SBT_AMBERFLO_CONFIG"
	EnvStackName      = "SBT_AMBERFLO_STACK"
	EnvArtifactBucket = "SBT_AMBERFLO_ARTIFACT_BUCKET"
	EnvEventBusName   = "SBT_AMBERFLO_EVENT_BUS"
	EnvAWSRegion      = "AWS_REGION"
)
