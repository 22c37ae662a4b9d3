// Package version reports the livecoll version linked into a binary.
//
// The version can be pinned at compile time:
//
//	go build -ldflags "-X github.com/kbukum/livecoll/version.Version=v1.0.0"
package version
