package ports

// Server defines the interface for the serving layer
type Server interface {
	// Start starts serving in the background
	Start() error

	// Stop gracefully stops the server
	Stop() error
}
