// Where: internal/manifest/resources.go
// What: Declarative resource specs produced by the metering adapter.
// Why: Keep the deployable intent as plain values the renderer and provisioner consume.
package manifest

// ResourcesSpec is the desired state the adapter emits. It is the "Intent"
// that the renderer serializes and the provisioner applies.
//
// NOTE: Keep this package free of SDK and parser dependencies.
// The adapter layer is responsible for producing these values; the
// provisioner layer maps them onto AWS SDK types.
type ResourcesSpec struct {
	Function FunctionSpec  `yaml:"Function"`
	Grants   []SecretGrant `yaml:"Grants,omitempty"`
}

// FunctionSpec defines the parameters for the metering service function.
type FunctionSpec struct {
	LogicalID        string            `yaml:"LogicalID"`
	Name             string            `yaml:"Name"`
	Handler          string            `yaml:"Handler,omitempty"`
	Runtime          string            `yaml:"Runtime,omitempty"`
	CodeURI          string            `yaml:"CodeURI,omitempty"`
	TimeoutSeconds   int32             `yaml:"TimeoutSeconds"`
	MemorySize       int32             `yaml:"MemorySize,omitempty"`
	Tracing          TracingMode       `yaml:"Tracing,omitempty"`
	LogRetentionDays int32             `yaml:"LogRetentionDays,omitempty"`
	Environment      map[string]string `yaml:"Environment,omitempty"`
	Layers           []LayerRef        `yaml:"Layers,omitempty"`
}

// TracingMode selects the function's distributed-tracing behavior.
type TracingMode string

const (
	TracingActive      TracingMode = "Active"
	TracingPassThrough TracingMode = "PassThrough"
)

// LayerRef points at a prebuilt, versioned platform layer. The adapter only
// records the reference; the layer contents are external artifacts.
type LayerRef struct {
	Name       string `yaml:"Name"`
	VersionARN string `yaml:"VersionARN"`
}

// SecretGrant is a read-only access grant from the credential store to the
// function's execution identity, scoped to a single secret.
type SecretGrant struct {
	SecretName string   `yaml:"SecretName"`
	Actions    []string `yaml:"Actions"`
}

// ReadSecretActions are the only actions a SecretGrant may carry. The grant
// is least-privilege on purpose: one secret, read only.
func ReadSecretActions() []string {
	return []string{"secretsmanager:GetSecretValue"}
}
