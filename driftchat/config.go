package driftchat

import "time"

// Config controls how the SDK connects.
type Config struct {
	// URL is the websocket endpoint of the push backend.
	URL string

	// RESTBaseURL is the base URL of the REST collaborator,
	// e.g. "http://localhost:3001/api".
	RESTBaseURL string

	// Token is the bearer credential passed on every REST call and on
	// the channel dial.
	Token string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	// AutoReconnect makes the channel retry after a transport loss with
	// the same credential. Reconnecting is internal; it is never a new
	// logical connect.
	AutoReconnect     bool
	ReconnectInterval time.Duration
	MaxReconnectDelay time.Duration
	// MaxReconnectTries bounds consecutive failed attempts; 0 means unbounded.
	MaxReconnectTries int

	// SendQueueSize is the capacity of the outbound write buffer.
	SendQueueSize int
}

// DefaultConfig returns sensible defaults. Set a timeout to 0 to disable it.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       0, // servers drive idle detection with ping/pong
		WriteTimeout:      10 * time.Second,
		AutoReconnect:     true,
		ReconnectInterval: 2 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		SendQueueSize:     16,
	}
}

func (c Config) validate() error {
	if c.URL == "" {
		return NewError(CodeInvalidConfig, "empty URL")
	}
	return nil
}
