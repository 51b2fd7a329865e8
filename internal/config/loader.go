package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/team-portal/internal/scheduling"
)

// Config captures environment driven configuration values for the portal.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	SessionTTL      time.Duration
	OrganizerPolicy scheduling.OrganizerPolicy
}

// Load parses configuration from the process environment. A .env file in
// the working directory is read first when present; real environment
// variables win over it. Defaults cover every value, so an empty
// environment yields a runnable in-memory portal.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "",
		SessionTTL:      24 * time.Hour,
		OrganizerPolicy: scheduling.OrganizerPolicyRestricted,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PORTAL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PORTAL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PORTAL_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PORTAL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if policyValue := strings.TrimSpace(os.Getenv("PORTAL_ORGANIZER_POLICY")); policyValue != "" {
		switch policyValue {
		case "restricted":
			cfg.OrganizerPolicy = scheduling.OrganizerPolicyRestricted
		case "last_writer":
			cfg.OrganizerPolicy = scheduling.OrganizerPolicyLastWriter
		default:
			invalid = append(invalid, "PORTAL_ORGANIZER_POLICY")
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
