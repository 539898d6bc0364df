package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// safeJoin resolves an archive entry name beneath root. Absolute names,
// names that climb out of root and names with NUL bytes are rejected.
func safeJoin(root, name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrUnsafeEntry, name)
	}

	// Archives use forward slashes; some Windows tools write backslashes.
	rel := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	rel = strings.TrimSuffix(rel, string(filepath.Separator))
	if rel == "" {
		return "", fmt.Errorf("%w: empty entry name", ErrUnsafeEntry)
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q escapes the destination", ErrUnsafeEntry, name)
	}

	full := filepath.Join(root, rel)
	// IsLocal already guarantees this; keep the check next to the join.
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the destination", ErrUnsafeEntry, name)
	}
	return full, nil
}
