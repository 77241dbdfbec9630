// Package pathinfo decomposes an archive file path into the fields the
// embedded script ABI reports to user scripts (spec §6).
package pathinfo

import (
	"os"
	"path/filepath"
	"strings"
)

// Info is the archive path record exposed to user scripts: absolute
// path, directory, filename stem, extension, and the process's current
// working directory.
type Info struct {
	AbsPath string
	Dir     string
	Stem    string
	Ext     string
	Cwd     string
}

// For decomposes archivePath into an Info. The process's current working
// directory is captured fresh on each call, since a long-running script
// host could in principle chdir between invocations.
func For(archivePath string) (Info, error) {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return Info{}, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Info{}, err
	}

	ext := filepath.Ext(abs)
	base := filepath.Base(abs)
	stem := strings.TrimSuffix(base, ext)

	return Info{
		AbsPath: abs,
		Dir:     filepath.Dir(abs),
		Stem:    stem,
		Ext:     ext,
		Cwd:     cwd,
	}, nil
}
