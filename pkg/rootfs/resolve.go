// Package rootfs maps client-supplied paths onto the server root directory.
package rootfs

import (
	"path/filepath"
	"strings"
)

// Resolve joins rel onto root component by component. Both '/' and '\' are
// separators. ".." removes the last accumulated component but never climbs
// above root, "." and empty components are ignored, and a leading drive
// marker such as "C:" is discarded. Every other component is appended as
// is. Resolve does not touch the filesystem.
func Resolve(root, rel string) string {
	parts := strings.FieldsFunc(rel, func(r rune) bool {
		return r == '/' || r == '\\'
	})

	segs := make([]string, 0, len(parts)+1)
	segs = append(segs, root)
	depth := 0

	for i, p := range parts {
		switch {
		case p == ".":
		case p == "..":
			if depth > 0 {
				segs = segs[:len(segs)-1]
				depth--
			}
		case i == 0 && isDriveMarker(p):
		default:
			segs = append(segs, p)
			depth++
		}
	}
	return filepath.Join(segs...)
}

func isDriveMarker(s string) bool {
	if len(s) != 2 || s[1] != ':' {
		return false
	}
	c := s[0] | 0x20
	return c >= 'a' && c <= 'z'
}
