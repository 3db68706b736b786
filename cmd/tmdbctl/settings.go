// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/bassosimone/apiflow"
	"github.com/bassosimone/apiflow/tmdb"
	"gopkg.in/yaml.v3"
)

// dnsSettings selects the resolver used to reach the API.
type dnsSettings struct {
	// Protocol is empty for the system resolver or one of udp, tcp, dot, doh.
	Protocol string `yaml:"protocol"`

	// Server is the DNS server address as ip:port.
	Server string `yaml:"server"`

	// ServerName is the TLS server name for dot.
	ServerName string `yaml:"server_name"`

	// URL is the endpoint for doh.
	URL string `yaml:"url"`
}

// settings is the content of the YAML configuration file.
type settings struct {
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Language  string        `yaml:"language"`
	RPS       float64       `yaml:"rps"`
	Burst     int           `yaml:"burst"`
	Timeout   time.Duration `yaml:"timeout"`
	LikedFile string        `yaml:"liked_file"`
	DNS       dnsSettings   `yaml:"dns"`
}

func defaultSettings() *settings {
	return &settings{
		BaseURL:   tmdb.BaseURL,
		APIKeyEnv: tmdb.DefaultKeyEnv,
		Language:  tmdb.DefaultLanguage,
		RPS:       10,
		Burst:     10,
		Timeout:   30 * time.Second,
	}
}

// loadSettings reads path over the defaults. An empty path means defaults.
func loadSettings(path string) (*settings, error) {
	s := defaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settings) validate() error {
	switch {
	case s.RPS <= 0:
		return errors.New("rps must be positive")
	case s.Burst <= 0:
		return errors.New("burst must be positive")
	case s.Timeout <= 0:
		return errors.New("timeout must be positive")
	case s.APIKeyEnv == "":
		return errors.New("api_key_env must not be empty")
	}
	return nil
}

// likedFile returns the liked store path, defaulting to the user config dir.
func (s *settings) likedFile() (string, error) {
	if s.LikedFile != "" {
		return s.LikedFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tmdbctl", "liked.yaml"), nil
}

// newResolver returns the configured resolver or nil for the system one.
func (s *settings) newResolver(cfg *apiflow.Config, logger apiflow.SLogger) (apiflow.Resolver, error) {
	if s.DNS.Protocol == "" {
		return nil, nil
	}
	server, err := netip.ParseAddrPort(s.DNS.Server)
	if err != nil {
		return nil, fmt.Errorf("dns.server: %w", err)
	}
	switch s.DNS.Protocol {
	case apiflow.DNSProtocolUDP:
		return apiflow.NewDNSOverUDPResolver(cfg, server, logger), nil
	case apiflow.DNSProtocolTCP:
		return apiflow.NewDNSOverTCPResolver(cfg, server, logger), nil
	case apiflow.DNSProtocolTLS:
		if s.DNS.ServerName == "" {
			return nil, errors.New("dns.server_name is required for dot")
		}
		return apiflow.NewDNSOverTLSResolver(cfg, server, s.DNS.ServerName, logger), nil
	case apiflow.DNSProtocolHTTPS:
		return apiflow.NewDNSOverHTTPSResolver(cfg, server, s.DNS.URL, logger)
	default:
		return nil, fmt.Errorf("dns.protocol: unsupported protocol %q", s.DNS.Protocol)
	}
}
