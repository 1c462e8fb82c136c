// Package component manages the lifecycle of channel backends.
//
// Backends such as object storage, databases and broker clients implement
// Component and are registered with a Registry, which starts them in
// registration order before a task runs and stops them in reverse order
// afterwards.
package component
