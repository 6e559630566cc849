package web

// shutdownError is returned by a handler to signal that the app cannot
// continue serving and should begin a graceful shutdown.
type shutdownError struct {
	Message string
}

// NewShutdownError returns an error that terminates the service.
func NewShutdownError(message string) error {
	return &shutdownError{message}
}

func (e *shutdownError) Error() string {
	return e.Message
}

// IsShutdown checks if the error is a shutdownError.
func IsShutdown(err error) bool {
	_, ok := err.(*shutdownError)
	return ok
}
