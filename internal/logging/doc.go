// Package logging builds the application's slog loggers: a console handler
// for interactive use, a JSON handler for machine consumption, and the
// attribute helpers shared across components.
package logging
