// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configDir = pflag.String("config", ".", "Directory containing config.toml")
	_         = pflag.Int("port", 0, "Port to listen on, overrides host.port")

	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes  = []string{"local", "s3"}
	validDBDrivers     = []string{"sqlite", "postgres"}
	validSessionStores = []string{"db", "redis"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	// A .env file is optional, real environment variables win
	_ = godotenv.Load()

	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configDir)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.path", "db_path")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("session.secret", "session_secret")
	v.BindEnv("session.max_age", "session_max_age")
	v.BindEnv("session.store", "session_store")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local.path", "storage_local_path")
	v.BindEnv("storage.s3.bucket", "storage_s3_bucket")
	v.BindEnv("storage.s3.region", "storage_s3_region")
	v.BindEnv("storage.s3.endpoint", "storage_s3_endpoint")
	v.BindEnv("storage.s3.access_key_id", "storage_s3_access_key_id")
	v.BindEnv("storage.s3.secret_access_key", "storage_s3_secret_access_key")
	v.BindEnv("storage.s3.public_url", "storage_s3_public_url")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_extensions", "upload_allowed_extensions")
	v.BindEnv("upload.thumbnail_size", "upload_thumbnail_size")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:8080"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "database.db")

	v.SetDefault("session.max_age", 60*60*24*30)
	v.SetDefault("session.store", "db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.path", "uploads")
	v.SetDefault("storage.s3.region", "auto")

	v.SetDefault("upload.max_size", 5)
	v.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg"})
	v.SetDefault("upload.thumbnail_size", 320)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if p := v.GetInt("port"); p > 0 {
		v.Set("host.port", p)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	switch v.GetString("db.driver") {
	case "sqlite":
		if v.GetString("db.path") == "" {
			return errors.New("db.path can't be empty")
		}
	case "postgres":
		if v.GetString("db.dsn") == "" {
			return errors.New("db.dsn can't be empty when using postgres")
		}
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if !slices.Contains(validSessionStores, v.GetString("session.store")) {
		return errors.New("invalid session store provided")
	}

	if v.GetString("session.store") == "redis" && v.GetString("redis.addr") == "" {
		return errors.New("redis.addr can't be empty when using the redis session store")
	}

	if v.GetInt("session.max_age") <= 0 {
		return errors.New("session.max_age must be bigger than 0")
	}

	if v.GetString("session.secret") == "" {
		// Logged once the logger is up, see api.NewRouter
		v.Set("session.secret", genSecret())
		v.Set("session.secret_generated", true)
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("storage.s3.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("storage.s3.access_key_id") == "" {
			return errors.New("access key id can't be empty")
		}
		if v.GetString("storage.s3.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("storage.s3.public_url") == "" {
			return errors.New("public url can't be empty")
		}
	case "local":
		if v.GetString("storage.local.path") == "" {
			return errors.New("storage.local.path can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("upload.thumbnail_size") <= 0 {
		return errors.New("upload.thumbnail_size must be bigger than 0")
	}

	exts := AllowedExtensions()
	if len(exts) == 0 {
		return errors.New("upload.allowed_extensions can't be empty")
	}
	v.Set("upload.allowed_extensions", exts)

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// AllowedExtensions returns the normalized list of accepted upload extensions.
// Env values come in as a comma or space separated string.
func AllowedExtensions() []string {
	var out []string
	for _, r := range v.GetStringSlice("upload.allowed_extensions") {
		for _, e := range strings.FieldsFunc(r, func(c rune) bool { return c == ',' || c == ' ' }) {
			e = strings.ToLower(strings.TrimPrefix(e, "."))
			if e != "" && !slices.Contains(out, e) {
				out = append(out, e)
			}
		}
	}

	return out
}
