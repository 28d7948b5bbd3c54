// Package deps holds the value types that dependency resolution produces
// and the rest of jbt consumes: repositories, scoped dependency lists and
// version overrides. Resolution itself happens elsewhere; these types only
// need stable canonical string forms, since they feed the fingerprint
// cache where ordering and formatting are part of the contract.
package deps

import (
	"fmt"
	"strings"
)

// Scope names used by the compile pipeline.
const (
	ScopeCompile  = "compile"
	ScopeProvided = "provided"
	ScopeRuntime  = "runtime"
	ScopeTest     = "test"
)

// Repository identifies an artifact repository by name and location.
type Repository struct {
	Name string
	URL  string
}

// String returns the canonical form used in fingerprints.
func (r Repository) String() string {
	if r.Name == "" {
		return r.URL
	}

	return r.Name + ":" + r.URL
}

// Dependency is a resolved artifact coordinate.
type Dependency struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Type       string
}

// String returns the canonical coordinate form
// groupId:artifactId:version[:classifier][@type].
func (d Dependency) String() string {
	var b strings.Builder
	b.WriteString(d.GroupID)
	b.WriteByte(':')
	b.WriteString(d.ArtifactID)

	if d.Version != "" {
		b.WriteByte(':')
		b.WriteString(d.Version)
	}

	if d.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(d.Classifier)
	}

	if d.Type != "" && d.Type != "jar" {
		b.WriteByte('@')
		b.WriteString(d.Type)
	}

	return b.String()
}

// DependencyScopes maps scope names to their dependency lists while
// preserving insertion order. Fingerprinting iterates scopes in the order
// they were added, so a deterministic caller produces a deterministic
// fingerprint.
type DependencyScopes struct {
	order  []string
	scopes map[string][]Dependency
}

// NewDependencyScopes creates an empty scope map.
func NewDependencyScopes() *DependencyScopes {
	return &DependencyScopes{
		scopes: make(map[string][]Dependency),
	}
}

// Add appends dependencies to a scope, registering the scope on first use.
// Adding a scope with no dependencies still registers it.
func (s *DependencyScopes) Add(scope string, dependencies ...Dependency) {
	if _, ok := s.scopes[scope]; !ok {
		s.order = append(s.order, scope)
		s.scopes[scope] = nil
	}

	s.scopes[scope] = append(s.scopes[scope], dependencies...)
}

// Scopes returns the scope names in insertion order.
func (s *DependencyScopes) Scopes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// Get returns a copy of the dependency list for a scope.
func (s *DependencyScopes) Get(scope string) []Dependency {
	list, ok := s.scopes[scope]
	if !ok {
		return nil
	}

	out := make([]Dependency, len(list))
	copy(out, list)

	return out
}

// VersionOverride pins a dependency coordinate to a fixed version.
type VersionOverride struct {
	Coordinate string
	Version    string
}

// String returns the key:value form used in fingerprints.
func (o VersionOverride) String() string {
	return fmt.Sprintf("%s:%s", o.Coordinate, o.Version)
}

// VersionResolution carries the ordered version overrides that resolution
// applied. Order is preserved from construction.
type VersionResolution struct {
	overrides []VersionOverride
}

// NewVersionResolution creates a resolution with the given overrides.
func NewVersionResolution(overrides ...VersionOverride) *VersionResolution {
	r := &VersionResolution{}
	r.overrides = append(r.overrides, overrides...)

	return r
}

// Overrides returns a copy of the override list in original order.
func (r *VersionResolution) Overrides() []VersionOverride {
	if r == nil {
		return nil
	}

	out := make([]VersionOverride, len(r.overrides))
	copy(out, r.overrides)

	return out
}
