package stream

// Config is the YAML application configuration.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topic    string `yaml:"topic"`
		Qos      byte   `yaml:"qos"`
	} `yaml:"mqtt"`
	Osc struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"osc"`
	Scheduler struct {
		MinIntervalMs int `yaml:"minIntervalMs"`
		MaxIntervalMs int `yaml:"maxIntervalMs"`
		StepMs        int `yaml:"stepMs"`
		MaxBatchSize  int `yaml:"maxBatchSize"`
	} `yaml:"scheduler"`
	Stream  StreamConfig `yaml:"stream"`
	Monitor struct {
		Addr string `yaml:"addr"`
	} `yaml:"monitor"`
}

// StreamConfig tunes the compute loop.
type StreamConfig struct {
	// TickRate is the position computation frequency in Hz.
	TickRate int `yaml:"tickRate"`
	// Transport selects the outgoing adapter, "mqtt" or "osc".
	Transport string `yaml:"transport"`
	// Coord is the wire coordinate system, "xyz" or "aed".
	Coord string `yaml:"coord"`
}
