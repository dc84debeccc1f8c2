package telemetry

// Config selects where spans go. With Enabled false every Start* helper
// returns a no-op span.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string  // OTLP/gRPC collector, host:port
	Insecure       bool    // plaintext to the collector
	SampleRate     float64 // fraction of root traces kept
}

// DefaultConfig is tracing off, pointed at a local collector.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "badgehub",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1,
	}
}

func (c Config) sampleRatio() float64 {
	return min(max(c.SampleRate, 0), 1)
}
