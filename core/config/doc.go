// Package config provides configuration management for the account audit tool.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section. Command-line flags override the loaded values.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Audit: nodes folder, store file and table names, concurrency, timeouts, report output
//   - Database: archiver connection (sqlite file or MySQL)
//   - Storage: S3/MinIO credentials and bucket for published reports
//   - Server: HTTP port, timeouts and API key
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Audit.NodesFolder)
package config
