// Package web holds the embedded landing page served at /.
package web

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// IndexHTML returns the landing page.
func IndexHTML() []byte {
	return indexHTML
}
