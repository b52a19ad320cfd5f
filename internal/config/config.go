// Package config loads the console configuration from the environment, with
// an optional .env file for local setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"

	"github.com/jtg86/mbxadmin/internal/directory/ldapdir"
)

// Config is the full console configuration.
type Config struct {
	LogLevel     string `default:"info"`
	LogPath      string `default:"mbxadmin.log"`
	AuditLogPath string `default:"mbxadmin-audit.log"`

	SearchMinLength int `default:"3"`
	SearchCap       int `default:"200"`

	Directory ldapdir.Config
}

// Load reads configuration from the environment. When envFile is non-empty
// the file is loaded first; a missing explicit file is an error, but the
// conventional ".env" is optional.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	getenv(&cfg.LogLevel, "MBXADMIN_LOG_LEVEL")
	getenv(&cfg.LogPath, "MBXADMIN_LOG_PATH")
	getenv(&cfg.AuditLogPath, "MBXADMIN_AUDIT_LOG")
	if err := getenvInt(&cfg.SearchMinLength, "MBXADMIN_SEARCH_MIN_LENGTH"); err != nil {
		return nil, err
	}
	if err := getenvInt(&cfg.SearchCap, "MBXADMIN_SEARCH_CAP"); err != nil {
		return nil, err
	}

	getenv(&cfg.Directory.URL, "MBXADMIN_LDAP_URL")
	getenv(&cfg.Directory.BaseDN, "MBXADMIN_LDAP_BASEDN")
	getenv(&cfg.Directory.BindDN, "MBXADMIN_LDAP_BINDDN")
	getenv(&cfg.Directory.BindPassword, "MBXADMIN_LDAP_PASSWORD")
	getenv(&cfg.Directory.KerberosRealm, "MBXADMIN_KRB_REALM")
	getenv(&cfg.Directory.KerberosKeytab, "MBXADMIN_KRB_KEYTAB")
	getenv(&cfg.Directory.KerberosCCache, "MBXADMIN_KRB_CCACHE")
	getenv(&cfg.Directory.KerberosConfig, "MBXADMIN_KRB_CONFIG")
	getenv(&cfg.Directory.KerberosSPN, "MBXADMIN_KRB_SPN")
	getenv(&cfg.Directory.FolderAttr, "MBXADMIN_LDAP_FOLDER_ATTR")
	getenv(&cfg.Directory.CalendarACLAttr, "MBXADMIN_LDAP_CALENDAR_ACL_ATTR")
	if err := getenvBool(&cfg.Directory.InsecureSkipVerify, "MBXADMIN_LDAP_INSECURE"); err != nil {
		return nil, err
	}
	if err := getenvDuration(&cfg.Directory.Timeout, "MBXADMIN_LDAP_TIMEOUT"); err != nil {
		return nil, err
	}

	if v := os.Getenv("MBXADMIN_LDAP_STARTTLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MBXADMIN_LDAP_STARTTLS %q: %w", v, err)
		}
		cfg.Directory.StartTLS = b
	}

	return cfg, nil
}

func getenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func getenvInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func getenvBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func getenvDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
