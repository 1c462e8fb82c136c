// Package version reports the build of the dataflow binary. Version, commit
// and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/dataflow/version.Version=1.4.0" ./cmd/dataflow
//
// Fields left empty fall back to the VCS stamp in the Go build info.
package version
