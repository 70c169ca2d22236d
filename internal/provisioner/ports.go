// Where: internal/provisioner/ports.go
// What: Client contracts the provisioner applies a declaration through.
// Why: Keep SDK types out of the apply sequence so it stays testable with fakes.
package provisioner

import (
	"context"

	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
)

// SecretsAPI resolves secret references in the credential store.
type SecretsAPI interface {
	// SecretARN returns the ARN for a secret name. A reference that does
	// not resolve aborts the whole deployment.
	SecretARN(ctx context.Context, name string) (string, error)
}

// IAMAPI manages the function's execution identity.
type IAMAPI interface {
	// EnsureRole creates the execution role if absent and returns its ARN.
	EnsureRole(ctx context.Context, name string) (string, error)
	// PutReadPolicy attaches an inline read-only policy scoped to exactly
	// the given secret ARNs.
	PutReadPolicy(ctx context.Context, roleName, policyName string, secretARNs []string) error
}

// CodeLocation points the function at its deployable artifact: either an
// inline zip or an uploaded S3 object.
type CodeLocation struct {
	Zip      []byte
	S3Bucket string
	S3Key    string
}

// S3API stores code artifacts.
type S3API interface {
	Upload(ctx context.Context, bucket, key string, body []byte) error
}

// FunctionDeployInput is the SDK-free shape of a function deployment.
type FunctionDeployInput struct {
	Name           string
	RoleARN        string
	Handler        string
	Runtime        string
	TimeoutSeconds int32
	MemorySize     int32
	Tracing        manifest.TracingMode
	Environment    map[string]string
	LayerARNs      []string
	Code           CodeLocation
}

// LambdaAPI deploys the function.
type LambdaAPI interface {
	// Deploy creates the function, or updates code and configuration when
	// it already exists.
	Deploy(ctx context.Context, input FunctionDeployInput) error
}

// LogsAPI bounds log growth for the function's log group.
type LogsAPI interface {
	EnsureRetention(ctx context.Context, logGroup string, days int32) error
}

// ClientFactory builds the service clients the apply sequence needs.
type ClientFactory interface {
	Secrets(ctx context.Context) (SecretsAPI, error)
	IAM(ctx context.Context) (IAMAPI, error)
	S3(ctx context.Context) (S3API, error)
	Lambda(ctx context.Context) (LambdaAPI, error)
	Logs(ctx context.Context) (LogsAPI, error)
}
