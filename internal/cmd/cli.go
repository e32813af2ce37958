package cmd

import "github.com/alecthomas/kong"

// CLI is the root command tree parsed by kong.
type CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit"`
	Config  string           `help:"Configuration file (json, yaml or toml)" type:"path" env:"TSDECL_CONFIG"`
	Log     LogConfig        `embed:"" prefix:"log."`

	Generate Generate      `cmd:"" default:"withargs" help:"Generate TypeScript declarations from a type catalog"`
	Dump     Dump          `cmd:"" help:"Print the resolved type graph of a catalog"`
	Scan     Scan          `cmd:"" help:"Build a type catalog from Go packages"`
	Configs  ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

// LogConfig configures the slog logger shared by all commands.
type LogConfig struct {
	Level string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"TSDECL_LOG_LEVEL"`
	File  string `help:"Log file path (logs to stdout/stderr when empty)" type:"path" env:"TSDECL_LOG_FILE"`
}
