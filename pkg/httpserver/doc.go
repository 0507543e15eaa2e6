// Package httpserver runs the API's http.Server with graceful shutdown.
//
// Run blocks until the context is cancelled, an interrupt or TERM signal
// arrives, or the listener fails; it then drains in-flight requests within the
// configured shutdown deadline. Construction goes through functional options
// (WithAddr, WithReadTimeout, WithLogger, ...) or NewFromConfig for the
// env-driven path.
//
// HealthCheckHandler doubles as liveness and readiness probe: with no
// dependency checks it reports ALIVE, with checks it runs each one and
// reports READY or NOT_READY.
//
// Listen failures come back wrapped in ErrStart, shutdown failures in
// ErrShutdown.
package httpserver
