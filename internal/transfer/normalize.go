package transfer

import "strings"

// NormalizeTitle sanitizes a Drive display title for use as a local file
// name and for target-side title comparison. Drive titles may contain path
// separators; local temp files must not.
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "/", "-")
	title = strings.ReplaceAll(title, "\\", "-")
	return title
}
