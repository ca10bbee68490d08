// Package secret resolves secret-bearing configuration values.
//
// A value may reference the environment with ${VAR} (strict: a missing
// variable is an error) and may reference a provider with
// "secretref:<provider>:<ref>", either as the whole value or inline:
//
//	database_url: secretref:file:/run/secrets/database_url
//	jwt_secret:   ${SUPABASE_JWT_SECRET}
//
// EnvProvider and FileProvider cover the deployment targets the service runs on.
package secret
