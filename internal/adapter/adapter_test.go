// Where: internal/adapter/adapter_test.go
// What: Tests for adapter composition.
// Why: The declared function, grants, and capability map are the whole contract.
package adapter

import (
	"strings"
	"testing"
)

func referenceConfig() Config {
	return Config{
		APIKeySecretName: "AmberfloApiKey",
		APIKeySecretID:   "AmberfloApiKey",
		BaseURL:          "https://amberflo.example.test",
	}
}

func TestNewBindsSecretReference(t *testing.T) {
	adapter, err := New(NewScope("sbt"), "metering", referenceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := adapter.Spec().Function.Environment
	if env["API_KEY_SECRET_NAME"] != "AmberfloApiKey" {
		t.Fatalf("unexpected secret name binding: %q", env["API_KEY_SECRET_NAME"])
	}
	if env["API_KEY_SECRET_ID"] != "AmberfloApiKey" {
		t.Fatalf("unexpected secret id binding: %q", env["API_KEY_SECRET_ID"])
	}
	if env["AMBERFLO_BASE_URL"] != "https://amberflo.example.test" {
		t.Fatalf("unexpected base url binding: %q", env["AMBERFLO_BASE_URL"])
	}
	if _, bound := env["AMBERFLO_API_KEY"]; bound {
		t.Fatalf("direct key must not be bound in reference mode")
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	cfg := referenceConfig()
	cfg.BaseURL = ""
	adapter, err := New(NewScope("sbt"), "metering", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := adapter.Spec().Function.Environment["AMBERFLO_BASE_URL"]; got != "https://app.amberflo.io" {
		t.Fatalf("unexpected default base url: %s", got)
	}
}

func TestNewNeverInlinesSecretValue(t *testing.T) {
	// Reference mode carries no key at all, so nothing secret-shaped may
	// appear anywhere in the static configuration.
	adapter, err := New(NewScope("sbt"), "metering", referenceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, value := range adapter.Spec().Function.Environment {
		if name == "AMBERFLO_API_KEY" {
			t.Fatalf("found inline key binding %s=%s", name, value)
		}
	}
}

func TestNewDirectModeBindsKeyWithoutGrant(t *testing.T) {
	adapter, err := New(NewScope("sbt"), "metering", Config{APIKey: "inline-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := adapter.Spec().Function.Environment["AMBERFLO_API_KEY"]; got != "inline-key" {
		t.Fatalf("unexpected key binding: %q", got)
	}
	if grants := adapter.Spec().Grants; len(grants) != 0 {
		t.Fatalf("direct mode must not request grants, got %d", len(grants))
	}
}

func TestNewGrantIsLeastPrivilege(t *testing.T) {
	adapter, err := New(NewScope("sbt"), "metering", referenceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	grants := adapter.Spec().Grants
	if len(grants) != 1 {
		t.Fatalf("expected exactly one grant, got %d", len(grants))
	}
	grant := grants[0]
	if grant.SecretName != "AmberfloApiKey" {
		t.Fatalf("grant scoped to wrong secret: %s", grant.SecretName)
	}
	if len(grant.Actions) != 1 || grant.Actions[0] != "secretsmanager:GetSecretValue" {
		t.Fatalf("grant must be read-only, got %v", grant.Actions)
	}
}

func TestCapabilityMapIsComplete(t *testing.T) {
	for name, cfg := range map[string]Config{
		"reference": referenceConfig(),
		"direct":    {APIKey: "inline-key"},
	} {
		adapter, err := New(NewScope("sbt"), "metering", cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		caps := adapter.Capabilities()
		if err := caps.Validate(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(caps) != 8 {
			t.Fatalf("%s: expected 8 capabilities, got %d", name, len(caps))
		}
		for op, handle := range caps {
			if handle.FunctionName != adapter.Spec().Function.Name {
				t.Fatalf("%s: capability %s routed to %s", name, op, handle.FunctionName)
			}
		}
	}
}

func TestCapabilityInvocationStyles(t *testing.T) {
	adapter, err := New(NewScope("sbt"), "metering", referenceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	async := map[Operation]bool{
		OpIngestUsageEvent: true,
		OpFetchUsage:       true,
	}
	for op, handle := range adapter.Capabilities() {
		want := StyleSync
		if async[op] {
			want = StyleAsync
		}
		if handle.Style != want {
			t.Fatalf("capability %s has style %s, want %s", op, handle.Style, want)
		}
	}
}

func TestNewRejectsSiblingCollision(t *testing.T) {
	scope := NewScope("sbt")
	if _, err := New(scope, "metering", referenceConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := New(scope, "metering", referenceConfig())
	if err == nil {
		t.Fatalf("expected sibling collision error")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	scope := NewScope("sbt")
	if _, err := New(scope, "metering", Config{}); err == nil {
		t.Fatalf("expected configuration error")
	}
	// A failed construction must not claim the identifier.
	if _, err := New(scope, "metering", referenceConfig()); err != nil {
		t.Fatalf("identifier should still be free: %v", err)
	}
}

func TestFunctionDeclarationDefaults(t *testing.T) {
	adapter, err := New(NewScope("sbt"), "metering", referenceConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := adapter.Spec().Function
	if fn.TimeoutSeconds != 60 {
		t.Fatalf("unexpected timeout: %d", fn.TimeoutSeconds)
	}
	if fn.Tracing != "Active" {
		t.Fatalf("tracing not enabled: %s", fn.Tracing)
	}
	if fn.LogRetentionDays != 5 {
		t.Fatalf("unexpected log retention: %d", fn.LogRetentionDays)
	}
	if len(fn.Layers) != 2 {
		t.Fatalf("expected 2 platform layers, got %d", len(fn.Layers))
	}
	if fn.Name != "sbt-metering" {
		t.Fatalf("unexpected function name: %s", fn.Name)
	}
}

func TestLayerOverrideByName(t *testing.T) {
	cfg := referenceConfig()
	cfg.Layers = []LayerOverride{{Name: "observability", VersionARN: "arn:aws:lambda:eu-west-1:111122223333:layer:tracing:3"}}
	adapter, err := New(NewScope("sbt"), "metering", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, layer := range adapter.Spec().Function.Layers {
		if layer.Name == "observability" && layer.VersionARN != "arn:aws:lambda:eu-west-1:111122223333:layer:tracing:3" {
			t.Fatalf("override not applied: %s", layer.VersionARN)
		}
	}
}
