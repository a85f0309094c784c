// Package component defines the component model for TabStreams.
//
// Components are the building blocks of a flow: inputs accept external data,
// processors transform it, outputs deliver it. Every component implements
// Discoverable so the management layer can inspect its metadata, ports,
// configuration schema, health and data flow; long-running components also
// implement LifecycleComponent (Initialize / Start / Stop).
//
// The Registry maps factory names to component factories and tracks created
// instances. Factories receive raw JSON configuration plus a Dependencies
// struct carrying the NATS client, metrics registry and logger, and must not
// perform I/O; all I/O belongs in Start.
package component
