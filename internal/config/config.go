package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Auth        AuthConfig      `yaml:"auth"`
	Providers   ProvidersConfig `yaml:"providers"`
	Environment string          `yaml:"environment" default:"local"` // local, dev, prod
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8080"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"curator"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// RedisConfig holds the optional search-result cache settings.
// Caching is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl" default:"5m"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT           JWTConfig `yaml:"jwt"`
	SessionSecret string    `yaml:"session_secret"` // base64, 32 bytes
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`             // Secret key for signing JWTs
	Lifetime   time.Duration `yaml:"lifetime" default:"168h"` // Default 7 days
}

// ProvidersConfig holds credentials for the upstream content catalogs
type ProvidersConfig struct {
	Books  BooksConfig  `yaml:"books"`
	Games  GamesConfig  `yaml:"games"`
	Music  MusicConfig  `yaml:"music"`
	Movies MoviesConfig `yaml:"movies"`
	Images ImagesConfig `yaml:"images"`
}

// BooksConfig holds Google Books settings. The volumes endpoint needs no key.
type BooksConfig struct {
	BaseURL string `yaml:"base_url" default:"https://www.googleapis.com/books/v1"`
}

// GamesConfig holds IGDB settings. IGDB authenticates with a Twitch
// client-credential token plus the Twitch client id as a header.
type GamesConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url" default:"https://api.igdb.com/v4"`
	TokenURL     string `yaml:"token_url" default:"https://id.twitch.tv/oauth2/token"`
}

// MusicConfig holds Spotify settings (client-credential flow)
type MusicConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url" default:"https://api.spotify.com/v1"`
	TokenURL     string `yaml:"token_url" default:"https://accounts.spotify.com/api/token"`
}

// MoviesConfig holds the IMDB suggestion API settings (no auth)
type MoviesConfig struct {
	BaseURL string `yaml:"base_url" default:"https://imdb.iamidiotareyoutoo.com"`
}

// ImagesConfig holds Unsplash settings (static access key, not a refresh flow)
type ImagesConfig struct {
	AccessKey string `yaml:"access_key"`
	BaseURL   string `yaml:"base_url" default:"https://api.unsplash.com"`
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Address returns the host:port pair the HTTP server listens on
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsLocal reports whether the service runs in the local development
// environment, where error responses may carry upstream detail.
func (c *Config) IsLocal() bool {
	return c.Environment == "" || c.Environment == "local"
}
