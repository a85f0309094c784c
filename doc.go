// Package tabstreams is a stream-processing service for repairing rejected
// tab-separated records.
//
// Upstream validators publish bad records (a raw TSV line plus the ordered
// list of validation errors that rejected it) onto a NATS subject. The
// tsvrepair processor evaluates an operator-supplied ECMAScript repair script
// once per record and either publishes a corrected record downstream or drops
// the record.
//
// The repository is organized in the component style: the script package
// holds the compile-once/evaluate-many script core, processor/tsvrepair wires
// it into the messaging layer, and component, message, natsclient, metric,
// config and errors provide the platform plumbing shared by all components.
package tabstreams
