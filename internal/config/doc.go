// Package config loads and validates taskdeck configuration.
//
// Configuration lives in a TOML file (default ~/.config/taskdeck/config.toml,
// or taskdeck.toml in the working directory). A missing file is not an
// error: defaults target a local TaskNotes instance. Environment variables
// TASKNOTES_API_BASE and TASKNOTES_TOKEN override the file so launcher
// workflow variables keep working without editing the file.
package config
