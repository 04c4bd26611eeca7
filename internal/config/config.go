package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Checker-Finance/adapters/vertex-adapter/pkg/config"
)

// TransportAddr is the bind address of the protocol streaming service.
// It is fixed by design, not reconfigurable.
const TransportAddr = "0.0.0.0:50051"

// Config holds the runtime configuration for the adapter.
type Config struct {
	ServiceName string
	Env         string // "dev", "uat", or "prod"
	LogLevel    string

	// AccountID is the account identity summaries are reported under.
	// It comes from the JSON account file, not the environment.
	AccountID string

	GatewayURL   string
	PollInterval time.Duration // account summary cadence

	AdminPort   int
	MetricsPort int

	NATSURL   string // optional order-flow mirror
	RedisAddr string // optional account summary cache
	RedisDB   int

	AWSRegion     string
	AWSSecretName string // optional signing-key secret; env fallback otherwise
}

// accountFile is the on-disk shape of the account config file.
type accountFile struct {
	AccountID string `json:"account_id"`
}

// Load reads configuration from the environment (and .env if present) plus
// the JSON account file at path.
func Load(path string) (*Config, error) {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:   pkgconfig.GetEnv("SERVICE_NAME", "vertex-adapter"),
		Env:           pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:      pkgconfig.GetEnv("LOG_LEVEL", "info"),
		GatewayURL:    pkgconfig.GetEnv("VERTEX_GATEWAY_URL", "https://gateway.prod.vertexprotocol.com"),
		PollInterval:  pkgconfig.GetEnvDuration("ACCOUNT_POLL_INTERVAL", 3*time.Second),
		AdminPort:     pkgconfig.GetEnvInt("ADMIN_PORT", 9020),
		MetricsPort:   pkgconfig.GetEnvInt("METRICS_PORT", 9120),
		NATSURL:       pkgconfig.GetEnv("NATS_URL", ""),
		RedisAddr:     pkgconfig.GetEnv("REDIS_ADDR", ""),
		RedisDB:       pkgconfig.GetEnvInt("REDIS_DB", 0),
		AWSRegion:     pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		AWSSecretName: pkgconfig.GetEnv("AWS_SECRET_NAME", ""),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read account config %s: %w", path, err)
	}
	var account accountFile
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("parse account config %s: %w", path, err)
	}
	if account.AccountID == "" {
		return nil, fmt.Errorf("account config %s: account_id is required", path)
	}
	cfg.AccountID = account.AccountID

	return cfg, nil
}
