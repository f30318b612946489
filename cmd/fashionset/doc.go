// Package main hosts the fashionset CLI entrypoint and command graph.
//
// Each dataset pipeline is one subcommand. The command layer resolves
// configuration and flag overrides, runs preflight checks, locks the output
// directory, and records the run in the history ledger; the pipelines
// themselves live in internal packages and know nothing about the CLI.
package main
