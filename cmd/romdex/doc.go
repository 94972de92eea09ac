// Package main hosts the romdex CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into scan
// pipeline runs, collection reports, duplicate and one-game-one-rom
// resolution views, job history queries, and configuration scaffolding. It
// centralizes configuration resolution, store access, and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
