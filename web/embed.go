// Package web carries the dashboard templates and browser assets compiled
// into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS { return sub("templates") }

// Static returns the asset tree served under /static/.
func Static() fs.FS { return sub("static") }

func sub(dir string) fs.FS {
	out, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a literal embedded above.
		panic(err)
	}
	return out
}
