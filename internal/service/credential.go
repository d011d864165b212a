package service

import "strings"

// Credential is a provider API key. The zero value is the unconfigured state.
type Credential struct {
	key string
}

func NewCredential(key string) Credential {
	return Credential{key: strings.TrimSpace(key)}
}

func (c Credential) Configured() bool {
	return c.key != ""
}

func (c Credential) Value() string {
	return c.key
}

// String never reveals the key.
func (c Credential) String() string {
	if !c.Configured() {
		return "<unconfigured>"
	}
	return "<redacted>"
}
