package bookstore

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "mongo" or "memory"
	uri        string
	database   string
	collection string
	appName    string

	connectTimeout   time.Duration
	operationTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMongo connects the client to a MongoDB collection.
func WithMongo(uri, database, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMongo
		c.uri = uri
		c.database = database
		c.collection = collection
	})
}

// WithMemory backs the client with an empty in-process collection.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithAppName sets the application name reported to the server.
func WithAppName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.appName = name
	})
}

// WithTimeouts sets the connect timeout and the per-operation client timeout.
// Zero keeps the driver default.
func WithTimeouts(connect, operation time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.connectTimeout = connect
		c.operationTimeout = operation
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
