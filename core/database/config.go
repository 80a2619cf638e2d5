package database

import (
	"math"
	"time"
)

// Config holds configuration for a database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Name is the sqlite file path or the mysql database name.
	Name string `mapstructure:"name" default:""`
	// Host is the database host (mysql only).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port (mysql only).
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user (mysql only).
	User string `mapstructure:"user" default:"root"`
	// Password is the database password (mysql only).
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ReadOnly opens sqlite files without write access and without creating them.
	ReadOnly bool `mapstructure:"read_only" default:"true"`
}

// SQLite returns a read-only sqlite configuration for the file at path.
func SQLite(path string, timeoutSeconds int) Config {
	return Config{
		Driver:         DriverSQLite,
		Name:           path,
		TimeoutSeconds: timeoutSeconds,
		ReadOnly:       true,
	}
}

// CeilSeconds converts d to whole seconds, rounding up so that a positive
// duration never becomes the zero "unbounded" value.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
