package config

// Version is injected at build time via ldflags.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/imdbplus/imdbplus/internal/config.Version=1.4.0'"
var Version = "dev"
