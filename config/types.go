package config

// Config holds the gateway daemon configuration. Values are loaded from
// <home>/config/dgateway_config.json and may be overridden per-field through
// DGATEWAY_* environment variables.
type Config struct {
	// NodeRPCURL is the consensus node's JSON-RPC endpoint used for
	// broadcast and status calls.
	NodeRPCURL string `json:"node_rpc_url" envconfig:"NODE_RPC_URL"`

	// NodeWSURL is the consensus node's websocket event endpoint.
	NodeWSURL string `json:"node_ws_url" envconfig:"NODE_WS_URL"`

	// VerifyEnvelopes enables signer-envelope verification on the broadcast
	// path. When disabled, submitted transactions are normalized and relayed
	// without cryptographic checks.
	VerifyEnvelopes bool `json:"verify_envelopes" envconfig:"VERIFY_ENVELOPES"`

	// SignatureAlgo is the single accepted signer algorithm identifier.
	SignatureAlgo string `json:"signature_algo" envconfig:"SIGNATURE_ALGO"`

	// ReconnectDelaySeconds is the fixed delay between event-stream
	// reconnect attempts.
	ReconnectDelaySeconds int `json:"reconnect_delay_seconds" envconfig:"RECONNECT_DELAY_SECONDS"`

	// BroadcastTimeoutSeconds bounds a single broadcast-and-wait RPC call.
	BroadcastTimeoutSeconds int `json:"broadcast_timeout_seconds" envconfig:"BROADCAST_TIMEOUT_SECONDS"`

	// APIPort is the HTTP port for the query/broadcast API.
	APIPort int `json:"api_port" envconfig:"API_PORT"`

	// DBFileName is the SQLite database file name under <home>/data.
	DBFileName string `json:"db_file_name" envconfig:"DB_FILE_NAME"`

	// Logging.
	LogLevel   int    `json:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat  string `json:"log_format" envconfig:"LOG_FORMAT"`
	LogSampler bool   `json:"log_sampler" envconfig:"LOG_SAMPLER"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		NodeRPCURL:              "http://localhost:26657",
		NodeWSURL:               "ws://localhost:26657/websocket",
		VerifyEnvelopes:         true,
		SignatureAlgo:           "dilithium5",
		ReconnectDelaySeconds:   3,
		BroadcastTimeoutSeconds: 30,
		APIPort:                 8080,
		DBFileName:              "gateway.db",
		LogLevel:                1,
		LogFormat:               "console",
		LogSampler:              false,
	}
}
