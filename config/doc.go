// Package config loads service configuration with viper.
//
// Values come from, in increasing precedence: registered defaults, a
// config.yml found next to the binary's cmd directory (or under ./config),
// a .env file loaded with godotenv, and the process environment. Nested keys
// can be overridden with underscore-joined env names (SERVER_PORT sets
// server.port), and flat legacy names can be mapped with WithEnvAliases.
package config
