// Package main hosts the seasonpass CLI entrypoint and command graph.
//
// The Cobra command tree runs the terminal player and exposes the stored
// progression for inspection: season status, override codes, caption
// export, state reset, and configuration scaffolding. It centralizes config
// resolution and logging setup so subcommands only deal with presentation.
package main
