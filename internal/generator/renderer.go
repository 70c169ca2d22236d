// Where: internal/generator/renderer.go
// What: Render the adapter's declaration as a deployable YAML template.
// Why: The synth command emits the declarative artifact the deployment engine consumes.
package generator

import (
	"bytes"
	"embed"
	"sort"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

// RenderTemplate produces the CloudFormation-style template for one
// adapter declaration.
func RenderTemplate(stackName string, spec manifest.ResourcesSpec, capabilities adapter.Capabilities) (string, error) {
	data := templateData{
		StackName: stackName,
		Function:  spec.Function,
		Grants:    spec.Grants,
		EnvKeys:   sortedKeys(spec.Function.Environment),
	}
	for _, op := range adapter.AllOperations() {
		handle := capabilities[op]
		data.Capabilities = append(data.Capabilities, capabilityContext{
			Operation:    string(handle.Operation),
			FunctionName: handle.FunctionName,
			Style:        string(handle.Style),
		})
	}
	return renderTemplate("stack.yml.tmpl", data)
}

func renderTemplate(name string, data any) (string, error) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		return value.(*template.Template), nil
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, err
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type templateData struct {
	StackName    string
	Function     manifest.FunctionSpec
	Grants       []manifest.SecretGrant
	EnvKeys      []string
	Capabilities []capabilityContext
}

type capabilityContext struct {
	Operation    string
	FunctionName string
	Style        string
}
