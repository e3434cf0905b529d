package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds file-based TLS settings. The same block configures a
// listener (ServerConfig) or an outbound client (ClientConfig).
type TLSConfig struct {
	// CertFile and KeyFile are the certificate this side presents: the
	// server certificate for a listener, the client certificate for mTLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	// CAFile verifies the peer: the sidecar's certificate for clients,
	// client certificates for a listener (which then requires them).
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	// ServerName overrides the name verified on the sidecar certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// SkipVerify disables sidecar certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Validate checks that cert and key come together.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("tls: cert_file and key_file must be set together")
	}
	return nil
}

// ServerEnabled reports whether a listener should serve TLS.
func (c *TLSConfig) ServerEnabled() bool {
	return c != nil && c.CertFile != "" && c.KeyFile != ""
}

// ClientEnabled reports whether any client-side setting is present.
func (c *TLSConfig) ClientEnabled() bool {
	return c != nil && (c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "")
}

// ServerConfig builds the listener configuration. It returns nil when no
// certificate is configured. With CAFile set, clients must present a
// certificate signed by it.
func (c *TLSConfig) ServerConfig() (*tls.Config, error) {
	if !c.ServerEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cfg := &tls.Config{MinVersion: c.minVersion()}
	if err := c.loadKeyPair(cfg); err != nil {
		return nil, err
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

// ClientConfig builds the outbound configuration. It returns nil when no
// client setting is present, leaving the system defaults in place.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if !c.ClientEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         c.minVersion(),
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		if err := c.loadKeyPair(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *TLSConfig) minVersion() uint16 {
	if c.MinVersion == 0 {
		return tls.VersionTLS12
	}
	return c.MinVersion
}

func (c *TLSConfig) loadKeyPair(cfg *tls.Config) error {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return fmt.Errorf("tls: load key pair: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tls: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("tls: no certificates in %s", path)
	}
	return pool, nil
}
