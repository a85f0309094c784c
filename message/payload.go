package message

import "encoding/json"

// Payload represents the data carried by a message.
// All message payloads must implement this interface to provide
// schema information, validation, and serialization capabilities.
//
// Example implementation:
//
//	type RepairedRecordPayload struct {
//	    Record string `json:"record"`
//	}
//
//	func (p *RepairedRecordPayload) Schema() Type {
//	    return Type{Domain: "tsv", Category: "repaired", Version: "v1"}
//	}
//
//	func (p *RepairedRecordPayload) Validate() error {
//	    if p.Record == "" {
//	        return errors.New("record is required")
//	    }
//	    return nil
//	}
type Payload interface {
	// Schema returns the Type that defines this payload's structure.
	// This enables type-safe routing and processing throughout the system.
	Schema() Type

	// Validate checks the payload data for correctness.
	// Returns nil if valid, or an error describing the validation failure.
	Validate() error

	// JSON serialization using standard Go interfaces.
	// Payloads must implement json.Marshaler and json.Unmarshaler
	// for deterministic serialization.
	json.Marshaler
	json.Unmarshaler
}
