package config

import (
	"os"
	"strings"

	"github.com/orbit-drive/orbit/internal/models"
)

// Environment variables consulted when no credentials are stored or passed.
const (
	EnvClientID = "ORBIT_CLIENT_ID"
	EnvAPIKey   = "ORBIT_API_KEY"
)

// ResolveCredentials returns the connection record to log in with and where it came from.
//
// Priority (highest to lowest):
//  1. Explicit values (e.g. --client-id / --api-key flags)
//  2. Stored record from the settings store
//  3. ORBIT_CLIENT_ID / ORBIT_API_KEY environment variables
//
// Source is "flag", "settings", "environment", or "" when nothing was found,
// in which case the empty record selects demo mode.
func ResolveCredentials(explicit, stored models.Credentials) (models.Credentials, string) {
	if !explicit.IsEmpty() {
		return explicit, "flag"
	}

	if !stored.IsEmpty() {
		return stored, "settings"
	}

	env := models.Credentials{
		ClientID: strings.TrimSpace(os.Getenv(EnvClientID)),
		APIKey:   strings.TrimSpace(os.Getenv(EnvAPIKey)),
	}
	if !env.IsEmpty() {
		return env, "environment"
	}

	return models.Credentials{}, ""
}
