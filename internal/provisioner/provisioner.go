// Where: internal/provisioner/provisioner.go
// What: Applies a metering service declaration to an AWS account.
// Why: Turn the adapter's declarative intent into real resources, all-or-nothing.
package provisioner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
)

// Zip payloads above this size go through the artifact bucket instead of
// the direct upload path.
const directUploadLimit = 50 << 20

// Options tune a single apply run.
type Options struct {
	// Code is the function's deployment package.
	Code []byte
	// ArtifactBucket, when set, receives code packages too large for
	// direct upload.
	ArtifactBucket string
}

// Runner applies a ResourcesSpec.
type Runner struct {
	Out     io.Writer
	Clients ClientFactory
}

// New returns a Runner using real AWS clients for the given region.
func New(region string) *Runner {
	return &Runner{
		Out:     os.Stdout,
		Clients: NewAWSClientFactory(region),
	}
}

// Apply provisions the declared function, its grants, and its log
// retention. Any failure aborts; nothing is rolled back because a partial
// deployment is re-applied idempotently on the next run.
func (r *Runner) Apply(ctx context.Context, spec manifest.ResourcesSpec, opts Options) error {
	if r == nil {
		return fmt.Errorf("provisioner is nil")
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	if r.Clients == nil {
		return fmt.Errorf("client factory not configured")
	}
	if spec.Function.Name == "" {
		return fmt.Errorf("function name is required")
	}
	if len(opts.Code) == 0 {
		return fmt.Errorf("code package is required")
	}

	secretARNs, err := r.resolveGrants(ctx, spec.Grants)
	if err != nil {
		return err
	}

	roleARN, err := r.ensureIdentity(ctx, spec, secretARNs, out)
	if err != nil {
		return err
	}

	code, err := r.stageCode(ctx, spec.Function.Name, opts)
	if err != nil {
		return err
	}

	if err := r.deployFunction(ctx, spec.Function, roleARN, code, out); err != nil {
		return err
	}

	return r.applyLogRetention(ctx, spec.Function, out)
}

// resolveGrants maps every grant to a secret ARN. An unresolvable
// reference is fatal before anything is created.
func (r *Runner) resolveGrants(ctx context.Context, grants []manifest.SecretGrant) ([]string, error) {
	if len(grants) == 0 {
		return nil, nil
	}
	secrets, err := r.Clients.Secrets(ctx)
	if err != nil {
		return nil, err
	}
	arns := make([]string, 0, len(grants))
	for _, grant := range grants {
		arn, err := secrets.SecretARN(ctx, grant.SecretName)
		if err != nil {
			return nil, err
		}
		arns = append(arns, arn)
	}
	return arns, nil
}

func (r *Runner) ensureIdentity(ctx context.Context, spec manifest.ResourcesSpec, secretARNs []string, out io.Writer) (string, error) {
	iamClient, err := r.Clients.IAM(ctx)
	if err != nil {
		return "", err
	}
	roleName := spec.Function.Name + "-role"
	roleARN, err := iamClient.EnsureRole(ctx, roleName)
	if err != nil {
		return "", err
	}
	if len(secretARNs) > 0 {
		policyName := spec.Function.Name + "-secret-read"
		if err := iamClient.PutReadPolicy(ctx, roleName, policyName, secretARNs); err != nil {
			return "", err
		}
		fmt.Fprintf(out, "granted read access to %d secret(s)\n", len(secretARNs))
	}
	return roleARN, nil
}

func (r *Runner) stageCode(ctx context.Context, functionName string, opts Options) (CodeLocation, error) {
	if opts.ArtifactBucket == "" || len(opts.Code) <= directUploadLimit {
		return CodeLocation{Zip: opts.Code}, nil
	}
	s3Client, err := r.Clients.S3(ctx)
	if err != nil {
		return CodeLocation{}, err
	}
	key := fmt.Sprintf("artifacts/%s.zip", functionName)
	if err := s3Client.Upload(ctx, opts.ArtifactBucket, key, opts.Code); err != nil {
		return CodeLocation{}, err
	}
	return CodeLocation{S3Bucket: opts.ArtifactBucket, S3Key: key}, nil
}

func (r *Runner) deployFunction(ctx context.Context, fn manifest.FunctionSpec, roleARN string, code CodeLocation, out io.Writer) error {
	lambdaClient, err := r.Clients.Lambda(ctx)
	if err != nil {
		return err
	}
	layerARNs := make([]string, 0, len(fn.Layers))
	for _, layer := range fn.Layers {
		layerARNs = append(layerARNs, layer.VersionARN)
	}
	input := FunctionDeployInput{
		Name:           fn.Name,
		RoleARN:        roleARN,
		Handler:        fn.Handler,
		Runtime:        fn.Runtime,
		TimeoutSeconds: fn.TimeoutSeconds,
		MemorySize:     fn.MemorySize,
		Tracing:        fn.Tracing,
		Environment:    fn.Environment,
		LayerARNs:      layerARNs,
		Code:           code,
	}
	if err := lambdaClient.Deploy(ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(out, "deployed function %s\n", fn.Name)
	return nil
}

func (r *Runner) applyLogRetention(ctx context.Context, fn manifest.FunctionSpec, out io.Writer) error {
	if fn.LogRetentionDays <= 0 {
		return nil
	}
	logsClient, err := r.Clients.Logs(ctx)
	if err != nil {
		return err
	}
	logGroup := "/aws/lambda/" + fn.Name
	if err := logsClient.EnsureRetention(ctx, logGroup, fn.LogRetentionDays); err != nil {
		return err
	}
	fmt.Fprintf(out, "log retention on %s set to %d day(s)\n", logGroup, fn.LogRetentionDays)
	return nil
}
