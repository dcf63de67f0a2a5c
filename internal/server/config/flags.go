package config

import (
	"github.com/spf13/pflag"
)

// parseFlags parses args into a copy of the current config.
//
// Supported flags:
//
//	-c, --config string             YAML or JSON config file
//	-a, --address string            HTTP bind address (e.g., ":8080")
//	-d, --dsn string                database DSN
//	    --driver string             "postgres" or "sqlite"
//	-s, --secret string             session signing key
//	-t, --session-validity duration session lifetime (e.g., "12h")
//	    --secure-cookie             send the session cookie over HTTPS only
//	    --log-level string          debug, info, warn or error
//	    --log-format string         json or text
//	    --view-cache-size int       most listing views kept in memory
//
// Only flags set on the command line are later copied by applyFlags, so they
// win over the file and the environment without clobbering them otherwise.
func parseFlags(args []string, defaults *Config) (*pflag.FlagSet, *Config, error) {
	flagged := *defaults

	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)

	fs.StringP("config", "c", "", "path to YAML or JSON config file")
	fs.StringVarP(&flagged.EndpointAddrHTTP, "address", "a", flagged.EndpointAddrHTTP, "address and port to run server")
	fs.StringVarP(&flagged.DatabaseDSN, "dsn", "d", flagged.DatabaseDSN, "database DSN")
	fs.StringVar(&flagged.DatabaseDriver, "driver", flagged.DatabaseDriver, "database driver (postgres or sqlite)")
	fs.StringVarP(&flagged.SecretKey, "secret", "s", flagged.SecretKey, "session signing key")
	fs.DurationVarP(&flagged.SessionValidityDuration, "session-validity", "t", flagged.SessionValidityDuration, "session lifetime")
	fs.BoolVar(&flagged.SecureCookie, "secure-cookie", flagged.SecureCookie, "send the session cookie over HTTPS only")
	fs.StringVar(&flagged.LogLevel, "log-level", flagged.LogLevel, "log level")
	fs.StringVar(&flagged.LogFormat, "log-format", flagged.LogFormat, "log format (json or text)")
	fs.IntVar(&flagged.ViewCacheSize, "view-cache-size", flagged.ViewCacheSize, "most listing views kept in memory")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return fs, &flagged, nil
}

func applyFlags(config *Config, fs *pflag.FlagSet, flagged *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "address":
			config.EndpointAddrHTTP = flagged.EndpointAddrHTTP
		case "dsn":
			config.DatabaseDSN = flagged.DatabaseDSN
		case "driver":
			config.DatabaseDriver = flagged.DatabaseDriver
		case "secret":
			config.SecretKey = flagged.SecretKey
		case "session-validity":
			config.SessionValidityDuration = flagged.SessionValidityDuration
		case "secure-cookie":
			config.SecureCookie = flagged.SecureCookie
		case "log-level":
			config.LogLevel = flagged.LogLevel
		case "log-format":
			config.LogFormat = flagged.LogFormat
		case "view-cache-size":
			config.ViewCacheSize = flagged.ViewCacheSize
		}
	})
}
