package config

// Config is the root configuration for the adapter host.
type Config struct {
	// BusBufferSize is the capacity of the inbound message bus.
	BusBufferSize int `json:"busBufferSize"`

	Feishu FeishuConfig `json:"feishu"`
}

// FeishuConfig holds the Feishu Open Platform app credentials and the
// adapter's tunables.
type FeishuConfig struct {
	AppID     string `json:"appId"`
	AppSecret string `json:"appSecret"`

	// MessageCacheSize bounds the dedup window. Events are delivered
	// at-least-once, so recently seen message IDs are tracked and skipped.
	MessageCacheSize int `json:"messageCacheSize"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		BusBufferSize: 100,
		Feishu: FeishuConfig{
			MessageCacheSize: 1000,
		},
	}
}
