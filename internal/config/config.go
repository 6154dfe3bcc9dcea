package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Claim policies.
const (
	// ClaimAnyone lets any signed-in user mark an item claimed.
	ClaimAnyone = "anyone"
	// ClaimOwner restricts claiming to the item's poster.
	ClaimOwner = "owner"
)

// Config holds the server settings.
type Config struct {
	Addr         string        `env:"ADDR" envDefault:":5000"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"izgubljeno.sqlite3"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenExpiry  time.Duration `env:"TOKEN_EXPIRY" envDefault:"168h"`
	ClaimPolicy  string        `env:"CLAIM_POLICY" envDefault:"anyone"`
	UploadDir    string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadMB  int           `env:"MAX_UPLOAD_MB" envDefault:"5"`
	LogPath      string        `env:"LOG_FILE"`
	Debug        bool          `env:"DEBUG"`
}

// Load reads .env (if present), then the environment, then args. Flags
// override environment values.
func Load(args []string, usage io.Writer) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	fs := flag.NewFlagSet("izgubljeno", flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "")
	fs.DurationVar(&cfg.TokenExpiry, "token-expiry", cfg.TokenExpiry, "")
	fs.StringVar(&cfg.ClaimPolicy, "claim-policy", cfg.ClaimPolicy, "")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "")
	fs.IntVar(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "")

	fs.Usage = func() {
		fmt.Fprint(usage, `Usage: izgubljeno [flags]

Flags:
  -a, -addr <host:port>     listen address (env ADDR, default :5000)
  -d, -db <path>            SQLite database path (env DATABASE_PATH)
  -jwt-secret <secret>      token signing key (env JWT_SECRET, default: stored in database)
  -token-expiry <duration>  token lifetime (env TOKEN_EXPIRY, default 168h)
  -claim-policy <policy>    who may claim items: anyone|owner (env CLAIM_POLICY)
  -uploads <dir>            image upload directory (env UPLOAD_DIR, default uploads)
  -max-upload-mb <n>        largest accepted upload (env MAX_UPLOAD_MB, default 5)
  -l, -log <path>           also write logs to a rotated file (env LOG_FILE)
  -debug                    human-readable debug logging (env DEBUG)
  -h, -help                 show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.ClaimPolicy != ClaimAnyone && c.ClaimPolicy != ClaimOwner {
		errs = append(errs, fmt.Errorf("invalid claim policy %q (want %s or %s)", c.ClaimPolicy, ClaimAnyone, ClaimOwner))
	}
	if c.TokenExpiry <= 0 {
		errs = append(errs, fmt.Errorf("token expiry must be positive, got %s", c.TokenExpiry))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
