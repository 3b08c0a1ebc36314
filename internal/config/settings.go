package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"truck-dispatch-agent/internal/domain"

	"gopkg.in/yaml.v3"
)

// Ledger drivers.
const (
	LedgerNone     = "none"
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "pgx"
)

// Settings holds the agent's tunables that are not part of the simulation input.
type Settings struct {
	NATS    NATSSettings    `yaml:"nats"`
	Ledger  LedgerSettings  `yaml:"ledger"`
	Journal JournalSettings `yaml:"journal"`
	HTTP    HTTPSettings    `yaml:"http"`
	Agent   AgentSettings   `yaml:"agent"`
}

type NATSSettings struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
	// Per-attempt limit on an oracle verify; 0 waits for the answer.
	OracleTimeout time.Duration `yaml:"oracleTimeout"`
}

type LedgerSettings struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// JournalSettings configures the compressed turn journal. An empty Dir disables it.
type JournalSettings struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// HTTPSettings configures the status server. An empty Addr disables it.
type HTTPSettings struct {
	Addr string `yaml:"addr"`
}

type AgentSettings struct {
	// Seed for the random fallback search; 0 picks one from the clock.
	Seed                int64 `yaml:"seed"`
	RandomAttempts      int   `yaml:"randomAttempts"`
	ExhaustiveMaxLength int   `yaml:"exhaustiveMaxLength"`
	PoolCapacity        int   `yaml:"poolCapacity"`
	Verbose             bool  `yaml:"verbose"`
}

func DefaultSettings() Settings {
	return Settings{
		NATS: NATSSettings{
			URL:  "nats://127.0.0.1:4222",
			Name: "truck-dispatch-agent",
		},
		Ledger: LedgerSettings{
			Driver: LedgerSQLite,
			DSN:    "data/ledger.db",
		},
		Journal: JournalSettings{
			Prefix: "turns",
		},
		HTTP: HTTPSettings{
			Addr: ":8080",
		},
		Agent: AgentSettings{
			RandomAttempts:      5000,
			ExhaustiveMaxLength: 3,
			PoolCapacity:        domain.MaxTotalPackages,
		},
	}
}

// LoadSettings reads the YAML settings file over the defaults, applies
// environment overrides and validates the result. An empty path or a missing
// file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("failed to parse settings file: %w", err)
			}
		}
	}

	s.ApplyEnv()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// ApplyEnv overrides file values with NATS_URL, DATABASE_URL, LEDGER_PATH,
// JOURNAL_DIR and HTTP_ADDR when they are set.
func (s *Settings) ApplyEnv() {
	s.NATS.URL = Get("NATS_URL", s.NATS.URL)
	s.HTTP.Addr = Get("HTTP_ADDR", s.HTTP.Addr)
	s.Journal.Dir = Get("JOURNAL_DIR", s.Journal.Dir)

	if dsn := Get("DATABASE_URL", ""); dsn != "" {
		s.Ledger.Driver = LedgerPostgres
		s.Ledger.DSN = dsn
	}
	if path := Get("LEDGER_PATH", ""); path != "" {
		s.Ledger.Driver = LedgerSQLite
		s.Ledger.DSN = path
	}
}

// Validate ensures settings are usable
func (s *Settings) Validate() error {
	if s.NATS.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	if s.NATS.OracleTimeout < 0 {
		return fmt.Errorf("nats oracleTimeout cannot be negative")
	}

	switch s.Ledger.Driver {
	case LedgerNone:
	case LedgerSQLite, LedgerPostgres:
		if s.Ledger.DSN == "" {
			return fmt.Errorf("ledger dsn is required for driver %q", s.Ledger.Driver)
		}
	default:
		return fmt.Errorf("unknown ledger driver %q", s.Ledger.Driver)
	}

	if s.Journal.Dir != "" && s.Journal.Prefix == "" {
		return fmt.Errorf("journal prefix is required when dir is set")
	}

	if s.Agent.RandomAttempts < 0 {
		return fmt.Errorf("randomAttempts cannot be negative")
	}

	if s.Agent.ExhaustiveMaxLength < 0 || s.Agent.ExhaustiveMaxLength > domain.MaxAuthLength {
		return fmt.Errorf("exhaustiveMaxLength (%d) outside [0, %d]",
			s.Agent.ExhaustiveMaxLength, domain.MaxAuthLength)
	}

	if s.Agent.PoolCapacity <= 0 {
		return fmt.Errorf("poolCapacity must be positive")
	}

	return nil
}
