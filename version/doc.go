// Package version reports the build of the maple binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/BioSina/MAPle/version.Version=1.0.0" ./cmd/maple
package version
