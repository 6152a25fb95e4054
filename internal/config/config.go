// Package config centralizes the compile-time constants both mftp binaries
// need to agree on, mirroring the reference implementation's single config
// header rather than letting each command define its own copy.
package config

// DefaultPort is the control connection's well-known port.
const DefaultPort = 49999

// Prompt is printed before reading each client command line.
const Prompt = "mftp$ "
