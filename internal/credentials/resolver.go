package credentials

import "os"

// EnvToken is the environment variable that overrides stored tokens.
const EnvToken = "TIMEKEEP_TOKEN"

// Source indicates where a token was found
type Source string

const (
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Resolve attempts to find a token using the priority order:
// 1. Keyring entry for the account's email
// 2. TIMEKEEP_TOKEN environment variable
//
// An empty token with SourceNone means the caller should fall back to
// whatever the persisted auth slot carries.
func Resolve(email string) (string, Source) {
	if email != "" {
		if token, err := Get(email); err == nil && token != "" {
			return token, SourceKeyring
		}
	}

	if token := os.Getenv(EnvToken); token != "" {
		return token, SourceEnv
	}

	return "", SourceNone
}
