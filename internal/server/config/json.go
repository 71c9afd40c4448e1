package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scriptkeeper/internal/flagx"
	"github.com/dmitrijs2005/scriptkeeper/internal/timex"
)

// JSONConfig is the on-disk representation read from the -c/-config file.
// Durations accept both "5m" style strings and integer nanoseconds.
// Empty or absent fields leave the current value untouched.
type JSONConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	Storage                      string         `json:"storage"`
	DatabaseDSN                  string         `json:"database_dsn"`
	DBHost                       string         `json:"db_host"`
	DBPort                       string         `json:"db_port"`
	DBUser                       string         `json:"db_user"`
	DBPassword                   string         `json:"db_password"`
	DBName                       string         `json:"db_name"`
	SecretKey                    string         `json:"secret_key"`
	JWTAlgorithm                 string         `json:"jwt_algorithm"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	LogLevel                     string         `json:"log_level"`
	LogFormat                    string         `json:"log_format"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays values from the JSON file named by -c/-config.
// Without the flag it is a no-op.
func parseJSON(config *Config, args []string) error {
	jsonConfigFile, _ := flagx.ConfigFiles(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DBHost, c.DBHost)
	setString(&config.DBPort, c.DBPort)
	setString(&config.DBUser, c.DBUser)
	setString(&config.DBPassword, c.DBPassword)
	setString(&config.DBName, c.DBName)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration.Set {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Set {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Set {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
