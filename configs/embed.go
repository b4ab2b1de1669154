// Package configs embeds the configuration template written by
// `evemt config init`.
//
// Edit config.example.yaml and rebuild to change it. The template must keep
// loading cleanly through config.Load.
package configs

import _ "embed"

// UserConfigTemplate is the commented default config.yaml.
//
//go:embed config.example.yaml
var UserConfigTemplate string
