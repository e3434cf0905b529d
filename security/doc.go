// Package security builds TLS configurations for the HTTP listener and for
// recognizer sidecar clients from file-based settings.
//
//	cfg := security.TLSConfig{CertFile: "server.pem", KeyFile: "server.key"}
//	tlsCfg, err := cfg.ServerConfig()
package security
