package component

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/c360/tabstreams/errors"
)

// Factory creates a component instance from configuration following the
// service pattern. The factory function receives raw JSON configuration and
// dependencies, parses its own config, and returns a properly initialized
// component that implements the Discoverable interface. All I/O operations
// should be performed in the component's Start() method, not in the factory.
type Factory func(rawConfig json.RawMessage, deps Dependencies) (Discoverable, error)

// Registration holds factory and metadata for a component type
type Registration struct {
	Name        string       `json:"name"`        // Factory name (e.g., "tsv_repair")
	Type        string       `json:"type"`        // Component type (input/processor/output)
	Protocol    string       `json:"protocol"`    // Technical protocol
	Domain      string       `json:"domain"`      // Business domain
	Description string       `json:"description"` // Human-readable description
	Version     string       `json:"version"`     // Component version
	Schema      ConfigSchema `json:"schema"`      // Schema as static metadata
	Factory     Factory      `json:"-"`           // Factory function (not serializable)
}

// RegistrationConfig provides a clean API for component registration.
// It maps 1:1 to Registration struct fields.
type RegistrationConfig struct {
	Name        string       // Component name (e.g., "tsv_repair")
	Factory     Factory      // Factory function to create component instances
	Schema      ConfigSchema // Configuration schema for validation and discovery
	Type        string       // Component type: "input", "processor", "output"
	Protocol    string       // Technical protocol
	Domain      string       // Business domain
	Description string       // Human-readable description of the component
	Version     string       // Component version (semver recommended)
}

// Registry manages component factories and instances.
// It provides thread-safe registration and lookup of both factories (for
// creation) and instances (for discovery and management).
type Registry struct {
	factories map[string]*Registration // Factory registry by name
	instances map[string]Discoverable  // Instance registry by name
	mu        sync.RWMutex             // Protects all maps
}

// NewRegistry creates a new empty component registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]*Registration),
		instances: make(map[string]Discoverable),
	}
}

// instanceNamePattern limits instance names to safe identifiers.
var instanceNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// ValidateComponentName checks that an instance name is a safe identifier.
func ValidateComponentName(name string) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "ValidateComponentName",
			"instance name cannot be empty")
	}
	if !instanceNamePattern.MatchString(name) {
		return errors.WrapInvalid(
			fmt.Errorf("instance name %q must match %s", name, instanceNamePattern.String()),
			"Registry", "ValidateComponentName", "instance name validation")
	}
	return nil
}

// RegisterWithConfig registers a component factory from a RegistrationConfig.
func (r *Registry) RegisterWithConfig(cfg RegistrationConfig) error {
	return r.RegisterFactory(cfg.Name, &Registration{
		Name:        cfg.Name,
		Type:        cfg.Type,
		Protocol:    cfg.Protocol,
		Domain:      cfg.Domain,
		Description: cfg.Description,
		Version:     cfg.Version,
		Schema:      cfg.Schema,
		Factory:     cfg.Factory,
	})
}

// RegisterFactory registers a component factory with the given name.
// Returns an error if a factory with the same name is already registered.
func (r *Registry) RegisterFactory(name string, registration *Registration) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterFactory", "factory name validation")
	}
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterFactory", "registration validation")
	}
	if registration.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterFactory", "factory function validation")
	}
	if registration.Type == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterFactory", "component type validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		msg := fmt.Errorf("factory '%s' is already registered", name)
		return errors.WrapInvalid(msg, "Registry", "RegisterFactory", "duplicate factory check")
	}

	r.factories[name] = registration
	return nil
}

// CreateComponent creates and registers a new component instance.
// The instanceName parameter is the unique identifier for this instance
// (e.g., "tsv-repair-main"); factoryName selects the registered factory.
// Factory functions don't do I/O, so no context is needed.
func (r *Registry) CreateComponent(
	instanceName, factoryName string, rawConfig json.RawMessage, deps Dependencies,
) (Discoverable, error) {
	if err := ValidateComponentName(instanceName); err != nil {
		return nil, err
	}

	r.mu.RLock()
	registration, exists := r.factories[factoryName]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("no factory registered for '%s'", factoryName),
			"Registry", "CreateComponent", "factory lookup")
	}

	instance, err := registration.Factory(rawConfig, deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent",
			fmt.Sprintf("create '%s' from factory '%s'", instanceName, factoryName))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[instanceName]; exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("instance '%s' already exists", instanceName),
			"Registry", "CreateComponent", "duplicate instance check")
	}

	r.instances[instanceName] = instance
	return instance, nil
}

// GetInstance returns a created component instance by name.
func (r *Registry) GetInstance(name string) (Discoverable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, exists := r.instances[name]
	return instance, exists
}

// RemoveInstance removes a component instance from the registry.
// The caller is responsible for stopping the component first.
func (r *Registry) RemoveInstance(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; !exists {
		return false
	}
	delete(r.instances, name)
	return true
}

// ListFactories returns the sorted names of all registered factories.
func (r *Registry) ListFactories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListInstances returns the sorted names of all created instances.
func (r *Registry) ListInstances() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRegistration returns factory metadata by name.
func (r *Registry) GetRegistration(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.factories[name]
	if !exists {
		return nil, false
	}

	// Copy without the factory function to prevent external mutation.
	return &Registration{
		Name:        registration.Name,
		Type:        registration.Type,
		Protocol:    registration.Protocol,
		Domain:      registration.Domain,
		Description: registration.Description,
		Version:     registration.Version,
		Schema:      registration.Schema,
	}, true
}
