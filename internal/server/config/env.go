package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file is
// loaded first: the one named by -env-file (must exist) or ./.env when
// present. Variables already set in the environment win over the file.
func parseEnv(config *Config, args []string) error {
	_, envFile := flagx.ConfigFiles(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	lookupString(&config.HTTPAddr, "HTTP_ADDR")
	lookupString(&config.Storage, "STORAGE")
	lookupString(&config.DatabaseDSN, "DATABASE_DSN")
	lookupString(&config.DBHost, "DB_HOST")
	lookupString(&config.DBPort, "DB_PORT")
	lookupString(&config.DBUser, "DB_USER")
	lookupString(&config.DBPassword, "DB_PASSWORD")
	lookupString(&config.DBName, "DB_NAME")
	lookupString(&config.SecretKey, "SECRET_KEY")
	lookupString(&config.JWTAlgorithm, "JWT_ALGORITHM")
	lookupString(&config.LogLevel, "LOG_LEVEL")
	lookupString(&config.LogFormat, "LOG_FORMAT")

	if err := lookupMinutes(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_EXPIRE_MINUTES"); err != nil {
		return err
	}
	if err := lookupMinutes(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_EXPIRE_MINUTES"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	return nil
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupMinutes(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = time.Duration(n) * time.Minute
	return nil
}
