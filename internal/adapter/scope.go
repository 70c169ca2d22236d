// Where: internal/adapter/scope.go
// What: Parent scope handle with sibling-identifier uniqueness.
// Why: Re-constructing an adapter under the same parent must be rejected, not merged.
package adapter

import "fmt"

// Scope is the deployment-definition scope an adapter is declared under.
// It tracks claimed child identifiers so that a duplicate declaration
// fails construction instead of silently overwriting a sibling.
type Scope struct {
	name     string
	children map[string]struct{}
}

// NewScope creates a named scope with no children.
func NewScope(name string) *Scope {
	return &Scope{
		name:     name,
		children: make(map[string]struct{}),
	}
}

// Name returns the scope's name.
func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) claim(id string) error {
	if id == "" {
		return fmt.Errorf("adapter: identifier is required")
	}
	if _, exists := s.children[id]; exists {
		return fmt.Errorf("adapter: identifier %q already exists in scope %q", id, s.name)
	}
	s.children[id] = struct{}{}
	return nil
}
