package config

// Environment variables read by parseEnv.
const (
	EnvDatabaseDSN    = "POSTGRES_URL"
	EnvSecretKey      = "AUTH_SECRET"
	EnvDatabaseDriver = "DATABASE_DRIVER"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
)

func parseEnv(config *Config, lookup func(string) (string, bool)) {
	for name, dst := range map[string]*string{
		EnvDatabaseDSN:    &config.DatabaseDSN,
		EnvSecretKey:      &config.SecretKey,
		EnvDatabaseDriver: &config.DatabaseDriver,
		EnvLogLevel:       &config.LogLevel,
		EnvLogFormat:      &config.LogFormat,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}
