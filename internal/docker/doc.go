// Package docker runs pdflatex inside a TeX Live container for hosts
// without a local LaTeX installation.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Compile containers: image pull, bind mounts for the asset and output
//     directories, exit status and log capture, removal
//   - Labels that mark compile containers as ours, so containers left
//     behind by a killed run can be found and pruned
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
