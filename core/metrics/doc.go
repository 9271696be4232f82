package metrics

// Package metrics defines the sink interfaces used to record import
// outcomes. Sinks like PromSink and InfluxSink record each finished import
// invocation and can be combined with NewMultiSink. The factory helper in
// infra/metrics returns a MultiSink automatically when multiple sinks are
// configured.
