package component

import (
	"fmt"
	"sync"

	"github.com/c360/tabstreams/errors"
)

// PayloadFactory creates a payload instance for a specific message type.
// The factory returns an any to avoid import cycles; the actual payload
// should implement the message.Payload interface.
type PayloadFactory func() any

// PayloadRegistration holds factory and metadata for a payload type.
type PayloadRegistration struct {
	Factory     PayloadFactory `json:"-"`           // Factory function (not serializable)
	Domain      string         `json:"domain"`      // Message domain (e.g., "tsv")
	Category    string         `json:"category"`    // Message category (e.g., "bad")
	Version     string         `json:"version"`     // Schema version (e.g., "v1")
	Description string         `json:"description"` // Human-readable description
	Example     map[string]any `json:"example"`     // Optional example payload data
}

// MessageType returns the formatted message type string for this registration.
// Format: "domain.category.version" (e.g., "tsv.bad.v1")
func (pr *PayloadRegistration) MessageType() string {
	return fmt.Sprintf("%s.%s.%s", pr.Domain, pr.Category, pr.Version)
}

// PayloadRegistry manages payload factories for message deserialization.
// It provides thread-safe registration and lookup of payload factories,
// enabling BaseMessage.UnmarshalJSON to recreate typed payloads from JSON.
type PayloadRegistry struct {
	registrations map[string]*PayloadRegistration // Registry by message type string
	mu            sync.RWMutex                    // Protects the map
}

// NewPayloadRegistry creates a new empty payload registry.
func NewPayloadRegistry() *PayloadRegistry {
	return &PayloadRegistry{
		registrations: make(map[string]*PayloadRegistration),
	}
}

// RegisterPayload registers a payload factory with validation.
// The message type is derived from the registration's Domain, Category, and
// Version fields. Returns an error if validation fails or the type is
// already registered.
func (pr *PayloadRegistry) RegisterPayload(registration *PayloadRegistration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload",
			"registration validation")
	}
	if registration.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload",
			"factory function validation")
	}
	if registration.Domain == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "domain validation")
	}
	if registration.Category == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "category validation")
	}
	if registration.Version == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "version validation")
	}

	msgType := registration.MessageType()

	pr.mu.Lock()
	defer pr.mu.Unlock()

	if _, exists := pr.registrations[msgType]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("payload type '%s' is already registered", msgType),
			"PayloadRegistry", "RegisterPayload", "duplicate payload check")
	}

	pr.registrations[msgType] = registration
	return nil
}

// CreatePayload creates a payload instance using the registered factory.
// Returns nil if the message type is not registered, allowing callers to
// handle unknown types gracefully.
func (pr *PayloadRegistry) CreatePayload(domain, category, version string) any {
	typeStr := fmt.Sprintf("%s.%s.%s", domain, category, version)

	pr.mu.RLock()
	registration, exists := pr.registrations[typeStr]
	pr.mu.RUnlock()

	if !exists {
		return nil
	}

	return registration.Factory()
}

// ListPayloads returns all registered payload types.
func (pr *PayloadRegistry) ListPayloads() map[string]*PayloadRegistration {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	result := make(map[string]*PayloadRegistration, len(pr.registrations))
	for msgType, registration := range pr.registrations {
		// Copy without the factory function for safety.
		result[msgType] = &PayloadRegistration{
			Domain:      registration.Domain,
			Category:    registration.Category,
			Version:     registration.Version,
			Description: registration.Description,
			Example:     registration.Example,
		}
	}

	return result
}

// defaultPayloadRegistry backs the package-level registration functions used
// by payload init() functions across the codebase.
var defaultPayloadRegistry = NewPayloadRegistry()

// RegisterPayload registers a payload factory with the default registry.
func RegisterPayload(registration *PayloadRegistration) error {
	return defaultPayloadRegistry.RegisterPayload(registration)
}

// CreatePayload creates a payload instance from the default registry.
func CreatePayload(domain, category, version string) any {
	return defaultPayloadRegistry.CreatePayload(domain, category, version)
}

// ListPayloads lists payload registrations in the default registry.
func ListPayloads() map[string]*PayloadRegistration {
	return defaultPayloadRegistry.ListPayloads()
}
