// Package logging provides the route discovery core's structured logger
// factory, generalized from the retrieved corpus's zap-based logger into an
// explicit dependency injected into every component rather than a package
// global.
package logging

import "go.uber.org/zap"

// New builds a zap.Logger appropriate for env. "local", "development" and
// "dev" get the human-readable development encoder; "production" and any
// other value get the JSON production encoder.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local", "development", "dev":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

// NewNop returns a no-op logger, used by tests that don't want log noise.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
