// Package version reports the build identity of the audiotext binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/audiotext/version.Version=1.2.0 \
//	  -X github.com/kbukum/audiotext/version.Commit=$(git rev-parse --short HEAD)"
//
// When they are absent, VCS stamps from runtime/debug fill the gaps.
package version
