// Where: internal/adapter/adapter.go
// What: Metering adapter composition.
// Why: Bind a validated configuration into one function declaration, its grants, and the capability map.
package adapter

import (
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/constants"
	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
)

const (
	// Fixed runtime profile for the metering service function.
	functionTimeoutSeconds = 60
	logRetentionDays       = 5

	functionMemoryMB = 128
	functionHandler  = "bootstrap"
	functionRuntime  = "provided.al2023"
	functionCodeURI  = "cmd/metering-service/"
)

// defaultLayers are the platform instrumentation layers attached to the
// metering service: an observability/tracing helper and an outbound-HTTP
// helper. Both are prebuilt external artifacts referenced by version.
func defaultLayers() []manifest.LayerRef {
	return []manifest.LayerRef{
		{
			Name:       "observability",
			VersionARN: "arn:aws:lambda:us-east-1:017000801446:layer:AWSLambdaPowertoolsPythonV2:59",
		},
		{
			Name:       "http-client",
			VersionARN: "arn:aws:lambda:us-east-1:770693421928:layer:Klayers-p312-requests:7",
		},
	}
}

// Adapter composes the deployable metering service and exposes it through
// the capability map the host framework requires. Construction is a linear
// declare-and-wire sequence: it either fully succeeds or returns an error
// with nothing declared.
type Adapter struct {
	id           string
	config       Config
	spec         manifest.ResourcesSpec
	capabilities Capabilities
}

// New declares the metering service under the given scope. The identifier
// must be unique among siblings; the configuration must resolve to exactly
// one credential mode.
func New(scope *Scope, id string, cfg Config) (*Adapter, error) {
	if scope == nil {
		return nil, fmt.Errorf("adapter: scope is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := scope.claim(id); err != nil {
		return nil, err
	}

	functionName := fmt.Sprintf("%s-%s", scope.Name(), id)

	spec := manifest.ResourcesSpec{
		Function: manifest.FunctionSpec{
			LogicalID:        id,
			Name:             functionName,
			Handler:          functionHandler,
			Runtime:          functionRuntime,
			CodeURI:          functionCodeURI,
			TimeoutSeconds:   functionTimeoutSeconds,
			MemorySize:       functionMemoryMB,
			Tracing:          manifest.TracingActive,
			LogRetentionDays: logRetentionDays,
			Environment:      environmentBindings(cfg),
			Layers:           resolveLayers(cfg),
		},
	}

	if cfg.SecretReferenceMode() {
		spec.Grants = []manifest.SecretGrant{
			{
				SecretName: cfg.APIKeySecretName,
				Actions:    manifest.ReadSecretActions(),
			},
		}
	}

	caps := buildCapabilities(functionName)
	if err := caps.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		id:           id,
		config:       cfg,
		spec:         spec,
		capabilities: caps,
	}, nil
}

// environmentBindings produces the function's runtime configuration. In
// reference mode only the secret reference is bound, never the key itself.
func environmentBindings(cfg Config) map[string]string {
	env := map[string]string{
		constants.EnvAmberfloBaseURL: cfg.ResolvedBaseURL(),
	}
	if cfg.SecretReferenceMode() {
		env[constants.EnvAPIKeySecretName] = cfg.APIKeySecretName
		env[constants.EnvAPIKeySecretID] = cfg.APIKeySecretID
	} else {
		env[constants.EnvAmberfloAPIKey] = cfg.APIKey
	}
	return env
}

func resolveLayers(cfg Config) []manifest.LayerRef {
	layers := defaultLayers()
	for _, override := range cfg.Layers {
		for i := range layers {
			if layers[i].Name == override.Name {
				layers[i].VersionARN = override.VersionARN
			}
		}
	}
	return layers
}

// buildCapabilities routes every operation to the one function. Meter CRUD
// and usage cancellation are synchronous; usage ingestion and usage fetch
// are dispatched asynchronously. Both credential modes expose the full map.
func buildCapabilities(functionName string) Capabilities {
	caps := make(Capabilities, len(AllOperations()))
	for _, op := range AllOperations() {
		style := StyleSync
		if op == OpIngestUsageEvent || op == OpFetchUsage {
			style = StyleAsync
		}
		caps[op] = Handle{
			Operation:    op,
			FunctionName: functionName,
			Style:        style,
		}
	}
	return caps
}

// ID returns the adapter's identifier within its scope.
func (a *Adapter) ID() string {
	return a.id
}

// Spec returns the declared resources.
func (a *Adapter) Spec() manifest.ResourcesSpec {
	return a.spec
}

// Capabilities returns a copy of the capability map so callers cannot
// mutate the adapter's routing.
func (a *Adapter) Capabilities() Capabilities {
	out := make(Capabilities, len(a.capabilities))
	for op, handle := range a.capabilities {
		out[op] = handle
	}
	return out
}

// Handle returns the invocation handle for one operation.
func (a *Adapter) Handle(op Operation) (Handle, bool) {
	handle, ok := a.capabilities[op]
	return handle, ok
}

func (a *Adapter) CreateMeter() Handle       { return a.capabilities[OpCreateMeter] }
func (a *Adapter) FetchMeter() Handle        { return a.capabilities[OpFetchMeter] }
func (a *Adapter) FetchAllMeters() Handle    { return a.capabilities[OpFetchAllMeters] }
func (a *Adapter) UpdateMeter() Handle       { return a.capabilities[OpUpdateMeter] }
func (a *Adapter) DeleteMeter() Handle       { return a.capabilities[OpDeleteMeter] }
func (a *Adapter) IngestUsageEvent() Handle  { return a.capabilities[OpIngestUsageEvent] }
func (a *Adapter) FetchUsage() Handle        { return a.capabilities[OpFetchUsage] }
func (a *Adapter) CancelUsageEvents() Handle { return a.capabilities[OpCancelUsageEvents] }

var _ MeteringProvider = (*Adapter)(nil)
