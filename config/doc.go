// Package config loads the pipeline configuration.
//
// The configuration file is line oriented: blank lines and lines starting
// with '#' are ignored, every other line is a "key = value" assignment
// overriding one of the built-in defaults (tool paths, reference
// databases, thresholds, pair identifiers and module switches).
//
// Parsed values are merged into Viper on top of the defaults, so
// environment variables with the MAPLE_ prefix (MAPLE_RAWABSOLUTE=5000)
// override the file, and a .env file next to the configuration file is
// loaded first when present. The result is decoded into an immutable,
// validated Config value that is passed explicitly to every component.
//
// # Usage
//
//	cfg, err := config.Load("maple.conf")
package config
