// Package governance holds the runtime safety controls archwise puts in front
// of the recommendation source: a circuit breaker that fails fast while the
// model endpoint is unhealthy, and a per-client token bucket limiter for the
// HTTP recommendation route.
package governance
