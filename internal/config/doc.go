// Package config reads the runtime configuration from the environment:
// calendar provider credentials, the mailbox allowlist, timezone, search
// provider selection and person resolution tuning.
package config
