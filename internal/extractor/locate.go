package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teamcutter/midna/internal/domain"
)

// Locate finds the package archive makepkg left in dir for name. Only files
// named name-<ver>-<rel>[-<arch>]<ext> are considered, and an archive whose
// .PKGINFO names a different package (a split or -debug package) is skipped.
// When several archives remain, the most recently modified one wins; equal
// times fall back to the greatest path so the choice does not depend on
// directory order.
func Locate(dir, name string, exts []string) (string, error) {
	var best string
	var bestMod int64

	for _, ext := range exts {
		matches, err := filepath.Glob(filepath.Join(dir, globEscape(name)+"-*"+globEscape(ext)))
		if err != nil {
			return "", err
		}

		for _, m := range matches {
			if !versionSuffix(filepath.Base(m), name, ext) {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if pkg, err := ReadPKGINFO(m); err == nil && pkg.Name != name {
				continue
			}

			mod := info.ModTime().UnixNano()
			if best == "" || mod > bestMod || (mod == bestMod && m > best) {
				best = m
				bestMod = mod
			}
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w: no %s-*%v in %s", domain.ErrArtifactNotFound, name, exts, dir)
	}
	return best, nil
}

// versionSuffix reports whether base is name-<ver>-<rel>[-<arch>]ext. pkgver
// cannot contain a hyphen, so anything with more fields belongs to another
// package that merely shares the prefix.
func versionSuffix(base, name, ext string) bool {
	rest, ok := strings.CutPrefix(base, name+"-")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ext)
	if !ok {
		return false
	}

	fields := strings.Split(rest, "-")
	switch len(fields) {
	case 2:
		return fields[0] != "" && isRelease(fields[1])
	case 3:
		return fields[0] != "" && isRelease(fields[1]) && fields[2] != "" && !isRelease(fields[2])
	}
	return false
}

func isRelease(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func globEscape(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
