// Package utils exposes reusable helpers consumed by the hookguard commands.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, and zap logging for the CLI.
package utils
