package executor

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DriverName is the database/sql driver registered by the Firebird client.
const DriverName = "firebirdsql"

// DefaultPort is the Firebird server port.
const DefaultPort = 3050

// Config is a connection profile, usually read from fbsql.yaml.
//
//	host: db.internal
//	port: 3050
//	database: /data/shop.fdb
//	user: SYSDBA
//	password: masterkey
//	role: APP
//	charset: UTF8
//	version: "2.5"   # skip the server query and use this engine version
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Role     string `yaml:"role,omitempty"`
	Charset  string `yaml:"charset,omitempty"`
	// Version overrides the engine version reported by the server.
	Version string `yaml:"version,omitempty"`
	// TablePrefix is applied by both grammars.
	TablePrefix string `yaml:"table_prefix,omitempty"`
}

// ErrNoDatabase is returned by Validate when no database is configured.
var ErrNoDatabase = errors.New("database is required")

// LoadConfig reads a YAML connection profile.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("executor: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("executor: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("executor: config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Database == "" {
		return ErrNoDatabase
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// DSN renders the profile in the driver's form:
//
//	user:password@host:port/database?charset=..&role=..
func (c *Config) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	dsn := url.UserPassword(c.User, c.Password).String() + "@" +
		net.JoinHostPort(host, strconv.Itoa(port)) + "/" + c.Database

	params := url.Values{}
	if c.Charset != "" {
		params.Set("charset", c.Charset)
	}
	if c.Role != "" {
		params.Set("role", c.Role)
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}
