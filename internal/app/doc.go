// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load a graph file, build
// the executor, drive frames and serve health and telemetry endpoints. It is
// decoupled from any specific entrypoint like a CLI.
package app
