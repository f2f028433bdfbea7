package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrMigrateDatabaseFmt    = "Failed to migrate database: %v"

	// Storage errors
	ErrCreateObjectStoreFmt = "Failed to create object store: %v"

	// Auth errors
	ErrCreateVerifierFmt = "Failed to create token verifier: %v"
	ErrSessionSecret     = "SESSION_SECRET must be set when authentication is enabled"

	// Server errors
	ErrServerShutdownFmt = "Server shutdown failed: %v"
)
