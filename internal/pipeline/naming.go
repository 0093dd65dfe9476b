package pipeline

import (
	"fmt"
	"strings"
)

var forbiddenNameChars = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName replaces characters that are not allowed in file names and
// trims surrounding spaces and dots.
func SanitizeFileName(value string) string {
	return strings.Trim(strings.TrimSpace(forbiddenNameChars.Replace(value)), ". ")
}

// FileNamer hands out collision-free base names within one run.
type FileNamer struct {
	used map[string]struct{}
}

// NewFileNamer returns a namer with no names taken.
func NewFileNamer() *FileNamer {
	return &FileNamer{used: make(map[string]struct{})}
}

// Next returns the name for the value at 1-based position index. Empty names
// fall back to code_<index>; repeats get _2, _3 and so on.
func (n *FileNamer) Next(value string, index int) string {
	base := SanitizeFileName(value)
	if base == "" {
		base = fmt.Sprintf("code_%d", index)
	}
	name := base
	for i := 2; ; i++ {
		if _, taken := n.used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
	n.used[name] = struct{}{}
	return name
}
