// Package config holds the typed, flag-populated configuration for the
// palaced process (SPEC_FULL §4.N): listen address, store location,
// room-file directory, and the Cyborg VM sandbox's instruction/wall-clock
// ceilings. Nothing in this package touches the network, the store, or
// the VM directly — cmd/palaced constructs one and hands it to session.Server
// and iptscrae/vm the way the teacher's example/*/main.go files build a
// flag struct and pass it to nodefs.Mount.
package config

import "time"

// Config is the fully-resolved process configuration.
type Config struct {
	ListenAddr string
	ServerName string

	DBPath    string
	RoomsDir  string

	CyborgMaxInstructions int
	CyborgMaxDuration     time.Duration

	LogLevel string
}

// Default returns the configuration used when no flags override it,
// matching the instruction/wall-clock ceilings spec.md §5 names as
// defaults (100k instructions, 5s).
func Default() Config {
	return Config{
		ListenAddr:            ":9998",
		ServerName:            "Palace Server",
		DBPath:                "palace.db",
		RoomsDir:              "",
		CyborgMaxInstructions: 100_000,
		CyborgMaxDuration:     5 * time.Second,
		LogLevel:              "info",
	}
}
