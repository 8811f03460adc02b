package main

import "embed"

// Built-in configs, used when -config is not given.
//
//go:embed configs
var configFS embed.FS
