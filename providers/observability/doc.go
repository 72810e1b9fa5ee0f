// Package observability defines the logging sink and metrics interfaces the
// extraction packages report to, together with the semantic attribute keys
// they use.
//
// The central entry point is [Provider], which composes [Metrics] and
// [Logger] into a single injectable dependency. A provider can travel through
// a [context.Context] with [ContextWithObserver] and be retrieved with
// [ObserverFromContext]. [Nop] discards everything and is the default when
// nothing is configured.
//
// The semconv.go file contains the attribute-key and metric-name constants
// that should be used when recording observations.
package observability
