package config

import (
	"os"
	"strings"
)

// Environment variable names searched for a GitHub token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the first non-empty token found in environment,
// falling back to the process environment when the map has none.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value := strings.TrimSpace(environment[key]); value != "" {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value, true
		}
	}
	return "", false
}
