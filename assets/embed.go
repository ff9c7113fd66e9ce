// assets/embed.go
//
// Embedded puzzle collections, one JSON file per language under data/.
// The server falls back to these when PUZZLES_DIR is not configured.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed data/*.json
var files embed.FS

// Puzzles returns the embedded data directory as an fs.FS rooted at data/,
// so collections are addressed as "<lang>.json".
func Puzzles() fs.FS {
	sub, err := fs.Sub(files, "data")
	if err != nil {
		// data/ is embedded at build time; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
