// Package version reports the build version of the scribe binaries.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/scribe/version.Version=1.0.0"
package version
