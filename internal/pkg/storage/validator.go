package storage

import "strings"

// ValidFilename reports whether name is an acceptable upload name: the part
// before the extension is all digits, there is exactly one dot, and the
// extension is jpg or jpeg.
func ValidFilename(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return false
	}
	base, ext := parts[0], parts[1]
	if base == "" || !isDigits(base) {
		return false
	}
	return ext == "jpg" || ext == "jpeg"
}

// ValidFilenames reports whether every name in the batch is acceptable.
// An empty batch trivially passes.
func ValidFilenames(names []string) bool {
	for _, name := range names {
		if !ValidFilename(name) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
