// Package storage provides the object store that file channels publish
// committed output to.
//
// # Backends
//
//   - storage/local: local filesystem, for development and tests
//   - storage/s3: Amazon S3 and S3-compatible storage
//
// Backends register a factory from init; import the ones a process needs:
//
//	import _ "github.com/kbukum/dataflow/storage/s3"
//
//	st, err := storage.New(storage.Config{Provider: "s3"}, &s3.Config{Bucket: "out"}, log)
package storage
