// SPDX-License-Identifier: MIT

// Package config loads and validates the server configuration from a
// YAML file with YADA_* environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yadaserver/yada/internal/log"
)

// Config is the effective runtime configuration.
type Config struct {
	// IPAddress binds the HTTP and SSDP engines. "any" selects the
	// first non-loopback IPv4 interface address at startup.
	IPAddress string `yaml:"ip_address"`

	// Port is the DLNA HTTP listener port. 0 lets the OS pick one.
	Port int `yaml:"port"`

	// DocRootPath holds served documents and persisted state.
	DocRootPath string `yaml:"doc_root_path"`

	// UUID identifies the device across restarts. Generated and
	// persisted under DocRootPath when empty.
	UUID string `yaml:"uuid"`

	// AnnounceAs is the friendlyName shown by control points.
	AnnounceAs string `yaml:"announce_as"`

	// AllowedIPs restricts clients when Enforce is set.
	AllowedIPs []string `yaml:"allowed_ips"`
	Enforce    bool     `yaml:"enforce"`

	// Shares are the media directories exported by the server.
	Shares []string `yaml:"shares"`

	// SamsungExtensions enables the sec namespace and the
	// X_GetObjectIDfromIndex action.
	SamsungExtensions *bool `yaml:"samsung_extensions"`

	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`

	// AdminPort serves metrics and health when non-zero.
	AdminPort int `yaml:"admin_port"`
}

// Defaults returns a configuration with every field at its default.
func Defaults() Config {
	enabled := true
	return Config{
		IPAddress:         "any",
		Port:              53235,
		DocRootPath:       ".",
		AnnounceAs:        "YADA",
		SamsungExtensions: &enabled,
		LogLevel:          "info",
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result. A missing file with an empty path is not an
// error; every value then comes from defaults and the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.IPAddress = ParseString("YADA_IP_ADDRESS", cfg.IPAddress)
	cfg.Port = ParseInt("YADA_PORT", cfg.Port)
	cfg.DocRootPath = ParseString("YADA_DOC_ROOT", cfg.DocRootPath)
	cfg.UUID = ParseString("YADA_UUID", cfg.UUID)
	cfg.AnnounceAs = ParseString("YADA_ANNOUNCE_AS", cfg.AnnounceAs)
	cfg.Enforce = ParseBool("YADA_ENFORCE", cfg.Enforce)
	cfg.LogLevel = ParseString("YADA_LOG_LEVEL", cfg.LogLevel)
	cfg.AdminPort = ParseInt("YADA_ADMIN_PORT", cfg.AdminPort)

	samsung := ParseBool("YADA_SAMSUNG_EXTENSIONS", cfg.SamsungEnabled())
	cfg.SamsungExtensions = &samsung

	if v, ok := os.LookupEnv("YADA_ALLOWED_IPS"); ok && v != "" {
		cfg.AllowedIPs = splitList(v)
	}
	if v, ok := os.LookupEnv("YADA_SHARES"); ok && v != "" {
		cfg.Shares = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SamsungEnabled reports the effective samsung_extensions setting.
func (c *Config) SamsungEnabled() bool {
	return c.SamsungExtensions == nil || *c.SamsungExtensions
}

// Validate checks value ranges and path sanity.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		return fmt.Errorf("admin_port %d out of range", c.AdminPort)
	}
	if c.IPAddress != "any" {
		if net.ParseIP(c.IPAddress) == nil {
			return fmt.Errorf("ip_address %q is not a valid IP", c.IPAddress)
		}
	}
	for _, ip := range c.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("allowed_ips entry %q is not a valid IP", ip)
		}
	}
	if c.DocRootPath == "" {
		return fmt.Errorf("doc_root_path must not be empty")
	}
	for i, s := range c.Shares {
		if s == "" {
			return fmt.Errorf("shares[%d] must not be empty", i)
		}
	}
	return nil
}

// ResolveIP turns the configured address into a concrete IPv4. "any"
// picks the first non-loopback interface address.
func (c *Config) ResolveIP() (net.IP, error) {
	if c.IPAddress != "any" {
		ip := net.ParseIP(c.IPAddress)
		if ip == nil {
			return nil, fmt.Errorf("ip_address %q is not a valid IP", c.IPAddress)
		}
		return ip, nil
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("no non-loopback IPv4 interface found")
}

// IPAllowed reports whether ip passes the allowed_ips filter. With
// enforcement off every client is accepted.
func (c *Config) IPAllowed(ip net.IP) bool {
	if !c.Enforce || len(c.AllowedIPs) == 0 {
		return true
	}
	for _, allowed := range c.AllowedIPs {
		if parsed := net.ParseIP(allowed); parsed != nil && parsed.Equal(ip) {
			return true
		}
	}
	logger := log.WithComponent("config")
	logger.Debug().
		Str("event", "config.ip_rejected").
		Str("ip", ip.String()).
		Msg("client not in allowed_ips")
	return false
}

// AbsShares returns the share paths made absolute and cleaned.
func (c *Config) AbsShares() ([]string, error) {
	out := make([]string, 0, len(c.Shares))
	for _, s := range c.Shares {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, fmt.Errorf("resolve share %q: %w", s, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
