package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Automation errors
	ErrUnknownAction  = fmt.Errorf("unknown automated action")
	ErrInvalidOptions = fmt.Errorf("invalid action options")
	ErrNotConfigured  = fmt.Errorf("no automated action configured")
	ErrLostSession    = fmt.Errorf("unable to retrieve session data")

	// Platform errors
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	ErrTokenFetch          = fmt.Errorf("unable to obtain access token")
	ErrEmptyQuery          = fmt.Errorf("query string cannot be empty")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
