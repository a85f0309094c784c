// Package metric provides Prometheus metrics infrastructure for TabStreams.
//
// A single MetricsRegistry owns a private Prometheus registry seeded with
// core platform metrics (message flow, processing duration, errors, NATS
// connection state) plus Go runtime collectors. Components register their own
// metrics through the MetricsRegistrar interface under a service/metric key,
// which guards against duplicate registration across component restarts.
//
// Server exposes the registry over HTTP at /metrics with a /health endpoint
// alongside it.
package metric
