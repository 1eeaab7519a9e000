package main

import "github.com/spf13/pflag"

// addSolveFlags registers the flags shared by both solve subcommands onto
// fs, the same AddFlag(fs *pflag.FlagSet)-onto-an-existing-FlagSet idiom as
// pkg/features/features.go.
func addSolveFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&jsonOutput, "json", false, "print the answer as JSON instead of ASCII art")
	fs.BoolVar(&verifyOpt, "verify", true, "cross-check the answer with internal/verify before printing it")
	fs.DurationVar(&timeoutOpt, "timeout", 0, "abort the search after this long (0 = no limit)")
}
