package config

import (
	"fmt"
	"strings"
	"time"
)

// DirectoryMode selects which directory backing the role system talks to.
type DirectoryMode string

const (
	// DirectoryModePostgres serves roles from the application's own database.
	DirectoryModePostgres DirectoryMode = "postgres"
	// DirectoryModeRemote delegates to an external directory service.
	DirectoryModeRemote DirectoryMode = "remote"
)

// UnmarshalText implements encoding.TextUnmarshaler for DirectoryMode.
func (d *DirectoryMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "postgres", "remote":
		*d = DirectoryMode(v)
		return nil
	default:
		return fmt.Errorf("invalid DirectoryMode: %q (valid options: postgres, remote)", v)
	}
}

// DirectoryConfig contains role directory configuration.
type DirectoryConfig struct {
	// Mode selects the directory backend.
	Mode DirectoryMode `env:"MODE" envDefault:"postgres"`

	// BaseURL is the remote directory's API base URL (Mode=remote).
	BaseURL string `env:"BASE_URL"`

	// ReasonExpr is a JMESPath expression that extracts the human-readable
	// rejection reason from remote error payloads (Mode=remote).
	ReasonExpr string `env:"REASON_EXPR" envDefault:"message"`

	// Timeout bounds remote directory calls (Mode=remote).
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// DirectorCap is the maximum number of director grants (Mode=postgres).
	DirectorCap int `env:"DIRECTOR_CAP" envDefault:"2"`

	// Passcodes for passcode-gated roles (Mode=postgres). A role with an
	// empty passcode is not gated.
	DirectorPasscode   string `env:"DIRECTOR_PASSCODE"`
	ManagementPasscode string `env:"MANAGEMENT_PASSCODE"`
}

// Sanitize applies guardrails to directory configuration values.
func (d *DirectoryConfig) Sanitize() {
	if d.DirectorCap < 1 {
		d.DirectorCap = 1
	}
	if d.Timeout <= 0 {
		d.Timeout = 15 * time.Second
	}
}

// Validate checks mode-specific requirements.
func (d *DirectoryConfig) Validate() error {
	if d.Mode == DirectoryModeRemote && d.BaseURL == "" {
		return fmt.Errorf("DIRECTORY_BASE_URL is required when DIRECTORY_MODE=remote")
	}
	return nil
}
