package message

import (
	"encoding/json"

	"github.com/c360/tabstreams/component"
	"github.com/c360/tabstreams/errors"
)

// Message types for the tsv domain.
var (
	// BadRecordMessage carries a rejected tab-separated record together
	// with the validation errors that caused its rejection.
	BadRecordMessage = Type{Domain: "tsv", Category: "bad", Version: "v1"}

	// RepairedRecordMessage carries a record that a repair script
	// transformed back into acceptable form.
	RepairedRecordMessage = Type{Domain: "tsv", Category: "repaired", Version: "v1"}
)

// BadRecordPayload is the payload of a tsv.bad.v1 message: one rejected
// tab-separated record plus the validation errors raised against it, in
// the order the validator produced them.
type BadRecordPayload struct {
	// Record is the raw rejected line, tab separators intact.
	Record string `json:"record"`

	// Errors lists the validation failures for this record. Order is
	// preserved end to end so repair scripts can rely on it.
	Errors []string `json:"errors"`
}

// Schema returns the message type for bad record payloads.
func (p *BadRecordPayload) Schema() Type {
	return BadRecordMessage
}

// Validate checks the payload data for correctness. An empty record is
// legal: a rejected line may well be blank.
func (p *BadRecordPayload) Validate() error {
	if p.Errors == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "BadRecordPayload", "Validate",
			"errors list must be present (may be empty)")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *BadRecordPayload) MarshalJSON() ([]byte, error) {
	type Alias BadRecordPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *BadRecordPayload) UnmarshalJSON(data []byte) error {
	type Alias BadRecordPayload
	return json.Unmarshal(data, (*Alias)(p))
}

// RepairedRecordPayload is the payload of a tsv.repaired.v1 message: the
// record after a repair script rewrote it.
type RepairedRecordPayload struct {
	// Record is the repaired line ready for revalidation.
	Record string `json:"record"`

	// OriginalErrors carries forward the validation errors the record
	// was rejected with, for audit trails downstream.
	OriginalErrors []string `json:"original_errors,omitempty"`
}

// Schema returns the message type for repaired record payloads.
func (p *RepairedRecordPayload) Schema() Type {
	return RepairedRecordMessage
}

// Validate checks the payload data for correctness.
func (p *RepairedRecordPayload) Validate() error {
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *RepairedRecordPayload) MarshalJSON() ([]byte, error) {
	type Alias RepairedRecordPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *RepairedRecordPayload) UnmarshalJSON(data []byte) error {
	type Alias RepairedRecordPayload
	return json.Unmarshal(data, (*Alias)(p))
}

func init() {
	// Registration of core payload types cannot fail at runtime; panic
	// surfaces programmer error at startup.
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Factory:     func() any { return &BadRecordPayload{} },
		Domain:      BadRecordMessage.Domain,
		Category:    BadRecordMessage.Category,
		Version:     BadRecordMessage.Version,
		Description: "Rejected tab-separated record with its validation errors",
		Example: map[string]any{
			"record": "alice\t\t42",
			"errors": []string{"field 2: missing email"},
		},
	}); err != nil {
		panic(err)
	}

	if err := component.RegisterPayload(&component.PayloadRegistration{
		Factory:     func() any { return &RepairedRecordPayload{} },
		Domain:      RepairedRecordMessage.Domain,
		Category:    RepairedRecordMessage.Category,
		Version:     RepairedRecordMessage.Version,
		Description: "Record rewritten by a repair script, ready for revalidation",
		Example: map[string]any{
			"record": "alice\talice@example.com\t42",
		},
	}); err != nil {
		panic(err)
	}
}
