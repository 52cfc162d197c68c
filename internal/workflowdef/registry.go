// Package workflowdef holds the fixed, ordered review pipelines a workflow
// instance can follow. Definitions ship embedded with the binary; a running
// workflow only stores the template ID and derives everything else.
package workflowdef

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"auditcore/internal/domain/models/lifecycle"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Duration wraps time.Duration so YAML can express deadlines as "72h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON renders the duration as the same "72h" string the YAML uses.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Template is one named review pipeline.
type Template struct {
	ID             string                     `json:"id" yaml:"id"`
	Name           string                     `json:"name" yaml:"name"`
	Steps          []lifecycle.StepDefinition `json:"steps" yaml:"steps"`
	DefaultTimeout Duration                   `json:"default_timeout" yaml:"default_timeout"`
}

// LastStep returns the number of the final step.
func (t *Template) LastStep() int {
	return len(t.Steps)
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// Registry manages workflow templates loaded from embedded YAML.
type Registry struct {
	templates map[string]*Template
	order     []string
	mu        sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded template files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*Template),
	}

	if err := r.loadFile("config/templates.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load workflow templates: %w", err)
	}

	return r, nil
}

func (r *Registry) loadFile(filename string) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range file.Templates {
		t := &file.Templates[i]
		if err := validateTemplate(t); err != nil {
			return fmt.Errorf("template %q: %w", t.ID, err)
		}
		if _, exists := r.templates[t.ID]; exists {
			return fmt.Errorf("duplicate template id %q", t.ID)
		}
		r.templates[t.ID] = t
		r.order = append(r.order, t.ID)
	}

	return nil
}

// Step numbers must form the contiguous sequence 1..n; the derived-step
// projection and the last-step check both depend on it.
func validateTemplate(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("missing id")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("no steps defined")
	}
	for i, step := range t.Steps {
		if step.Number != i+1 {
			return fmt.Errorf("step %d numbered %d, want %d", i, step.Number, i+1)
		}
		if step.Name == "" {
			return fmt.Errorf("step %d has no name", step.Number)
		}
	}
	return nil
}

// Get returns the template with the given ID.
func (r *Registry) Get(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown workflow template: %s", id)
	}
	return t, nil
}

// List returns all templates in file order.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}
