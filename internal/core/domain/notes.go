package domain

import "fmt"

// DefaultVersionNotes is the note applied to a version appended without an
// explicit note from the author.
func DefaultVersionNotes(versionNo int) string {
	if versionNo == 1 {
		return "Initial version"
	}
	return fmt.Sprintf("Version %d", versionNo)
}
