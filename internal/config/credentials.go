package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadCredentials.
const (
	EnvDBHost     = "ISPETL_DB_HOST"
	EnvDBPort     = "ISPETL_DB_PORT"
	EnvDBName     = "ISPETL_DB_NAME"
	EnvDBUser     = "ISPETL_DB_USER"
	EnvDBPassword = "ISPETL_DB_PASSWORD"
	EnvDBSSLMode  = "ISPETL_DB_SSLMODE"
)

// Credentials are the named connection parameters of the destination. The
// pipeline treats them as opaque and never validates them.
type Credentials struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// LoadCredentials loads envFile (when it exists) into the process
// environment without overriding variables already set, then reads the
// ISPETL_DB_* variables. A missing envFile is not an error.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return Credentials{
		Host:     os.Getenv(EnvDBHost),
		Port:     os.Getenv(EnvDBPort),
		Database: os.Getenv(EnvDBName),
		User:     os.Getenv(EnvDBUser),
		Password: os.Getenv(EnvDBPassword),
		SSLMode:  os.Getenv(EnvDBSSLMode),
	}, nil
}

// DSN renders a connection string for the given storage kind.
func (c Credentials) DSN(kind string) string {
	switch kind {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.hostPort("5432"),
			Path:   "/" + c.Database,
		}
		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}
		return u.String()
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.hostPort("1433"),
			RawQuery: url.Values{"database": {c.Database}}.Encode(),
		}
		return u.String()
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.hostPort("3306")
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN()
	case "sqlite":
		if c.Database == "" {
			return "file::memory:"
		}
		return filepath.Clean(c.Database)
	default:
		return ""
	}
}

func (c Credentials) hostPort(defPort string) string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == "" {
		port = defPort
	}
	return net.JoinHostPort(host, port)
}

// ResolveDSN returns storage.db.dsn when set, otherwise the DSN built from c.
func ResolveDSN(s Storage, c Credentials) string {
	if s.DB.DSN != "" {
		return s.DB.DSN
	}
	return c.DSN(s.Kind)
}
