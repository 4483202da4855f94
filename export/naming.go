package export

import (
	"path/filepath"
	"strings"
)

// DefaultSeparator joins the base name and the identifier.
const DefaultSeparator = "-"

// DestName returns the destination file name for an artifact.
//
// With StrategyRevision the identifier goes before the last extension:
// "sdk.jar" becomes "sdk-1a2b3c4.jar" and "docs.tar.gz" becomes
// "docs.tar-1a2b3c4.gz".
func DestName(name string, strategy Strategy, identifier, separator string) string {
	if strategy != StrategyRevision {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + separator + identifier + ext
}
