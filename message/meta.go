package message

import "time"

// Meta provides metadata about a message's lifecycle and origin.
// This interface enables tracking of when messages were created,
// when they entered the system, and where they originated.
type Meta interface {
	// CreatedAt returns when the original event or observation occurred.
	CreatedAt() time.Time

	// ReceivedAt returns when the message entered the processing system.
	// May be the same as CreatedAt for real-time streams.
	ReceivedAt() time.Time

	// Source returns the identifier of the message originator.
	// Examples: "tsv-validator", "tsv-repair-main"
	Source() string
}
