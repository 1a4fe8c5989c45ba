// Package main hosts the taskdeck CLI entrypoint and command graph.
//
// The Cobra-based command tree translates launcher invocations into feed
// JSON on stdout: search results, the per-task action menu, create previews,
// and pomodoro status. Write operations arrive as action payloads through
// `taskdeck act`. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
