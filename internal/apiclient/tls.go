package apiclient

import "crypto/tls"

// insecureTLSConfig disables certificate verification, scoped to this
// client's transport only (spec §6 "insecureHttps: Allow self-signed TLS,
// scoped to this client only").
func insecureTLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in, documented in config precedence table
}
