package config

import (
	"reflect"
	"strings"
	"time"

	"account-audit/core/database"
	"account-audit/core/logger"
	"account-audit/core/server"
	"account-audit/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Audit holds the store layout and run settings.
	Audit AuditConfig `mapstructure:"audit"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for report publishing (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the archiver connection.
	Database database.Config `mapstructure:"database"`
}

// AuditConfig describes where the stores live and how a run behaves.
type AuditConfig struct {
	// NodesFolder is walked recursively for node store files.
	NodesFolder string `mapstructure:"nodes_folder" default:""`
	// NodeDBFile is the file name identifying a node store.
	NodeDBFile string `mapstructure:"node_db_file" default:"shardeum.sqlite"`
	// ArchiverTable is the archiver table holding account payloads.
	ArchiverTable string `mapstructure:"archiver_table" default:"accounts"`
	// NodeTable is the node table holding account payloads.
	NodeTable string `mapstructure:"node_table" default:"accountsEntry"`
	// Concurrency limits how many node stores load at once.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// StoreTimeoutSeconds bounds opening and reading one store.
	StoreTimeoutSeconds int `mapstructure:"store_timeout_seconds" default:"120"`
	// CacheTTLSeconds is how long the HTTP feature reuses a loaded snapshot.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// Verbose reports matches and orphans as well as mismatches.
	Verbose bool `mapstructure:"verbose" default:"false"`
	// ReportDir is where JSON reports are written.
	ReportDir string `mapstructure:"report_dir" default:"."`
	// ReportPrefix is the object key prefix of published reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports/accounts/"`
}

// StoreTimeout returns the per-store timeout.
func (a AuditConfig) StoreTimeout() time.Duration {
	return time.Duration(a.StoreTimeoutSeconds) * time.Second
}

// CacheTTL returns the snapshot cache TTL.
func (a AuditConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. AUDIT_NODES_FOLDER -> audit.nodes_folder)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
