// Package diff parses unified diff text into per-file change records.
//
// The simple mode reconstructs each file's new content directly from the
// added and context lines, without the original file. It does not validate
// hunk offsets, so the result is best-effort: good enough for generating PR
// content from a diff, not for patch application. The structured mode keeps
// hunk boundaries and raw lines for callers that need them.
package diff

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FileDiff is the simple-mode record for one file in a diff.
type FileDiff struct {
	// Path is the post-change path (the "b/" side of the header).
	Path string

	// NewContent is the file content after the change, reconstructed from
	// added and context lines.
	NewContent string

	// OldContent is the content before the change, reconstructed from
	// removed and context lines.
	OldContent string

	// IsNew marks a newly created file.
	IsNew bool

	// IsDelete marks a deleted file.
	IsDelete bool
}

// ParseError reports a malformed diff or hunk header.
type ParseError struct {
	// Line is the 1-based line number in the diff text.
	Line int

	// Text is the offending line.
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed diff at line %d: %q", e.Line, e.Text)
}

var (
	fileHeaderRegex = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// Parse splits unified diff text into simple per-file records. Lines before
// the first file header and unrecognized header lines are skipped rather
// than rejected.
func Parse(text string) []FileDiff {
	var diffs []FileDiff
	var current *FileDiff
	var newLines, oldLines []string
	inHunk := false

	flush := func() {
		if current == nil {
			return
		}
		current.NewContent = strings.Join(newLines, "\n")
		current.OldContent = strings.Join(oldLines, "\n")
		diffs = append(diffs, *current)
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			current = &FileDiff{Path: headerPath(line)}
			newLines, oldLines = nil, nil
			inHunk = false
		case current == nil:
			// Preamble before the first file header.
		case strings.HasPrefix(line, "new file mode"):
			current.IsNew = true
		case strings.HasPrefix(line, "deleted file mode"):
			current.IsDelete = true
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
			// Header lines (index, ---, +++) before the first hunk.
		case strings.HasPrefix(line, "+"):
			newLines = append(newLines, line[1:])
		case strings.HasPrefix(line, "-"):
			oldLines = append(oldLines, line[1:])
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
		case strings.HasPrefix(line, " "):
			newLines = append(newLines, line[1:])
			oldLines = append(oldLines, line[1:])
		case line == "":
			// Blank separator between files; a blank context line would
			// carry a leading space.
		default:
			newLines = append(newLines, line)
			oldLines = append(oldLines, line)
		}
	}
	flush()

	return diffs
}

// headerPath extracts the "b/" path from a "diff --git" header.
func headerPath(line string) string {
	if m := fileHeaderRegex.FindStringSubmatch(line); m != nil {
		return m[2]
	}
	return ""
}

// Hunk is one hunk of a structured file diff.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// Lines are the raw hunk lines, prefixes included.
	Lines []string
}

// FileHunks is the structured-mode record for one file in a diff.
type FileHunks struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// ParseHunks parses diff text preserving hunk structure. Unlike Parse, it
// rejects malformed file and hunk headers.
func ParseHunks(text string) ([]FileHunks, error) {
	var files []FileHunks
	var current *FileHunks
	var hunk *Hunk

	flushHunk := func() {
		if hunk != nil && current != nil {
			current.Hunks = append(current.Hunks, *hunk)
			hunk = nil
		}
	}
	flushFile := func() {
		flushHunk()
		if current != nil {
			files = append(files, *current)
			current = nil
		}
	}

	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flushFile()
			m := fileHeaderRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, &ParseError{Line: i + 1, Text: line}
			}
			current = &FileHunks{OldPath: m[1], NewPath: m[2]}
		case strings.HasPrefix(line, "@@"):
			if current == nil {
				return nil, &ParseError{Line: i + 1, Text: line}
			}
			flushHunk()
			m := hunkHeaderRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, &ParseError{Line: i + 1, Text: line}
			}
			hunk = &Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldCount: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewCount: atoiDefault(m[4], 1),
			}
		case hunk != nil:
			hunk.Lines = append(hunk.Lines, line)
		}
	}
	flushFile()

	return files, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Suggest derives a PR title and description from a path-to-content map of
// changes, using the file extension and the first content line as weak
// hints. Paths are visited in sorted order so the output is deterministic.
func Suggest(changes map[string]string) (title, description string) {
	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if len(paths) == 1 {
		path := paths[0]
		fileType := fileTypeOf(path)
		lines := strings.Split(changes[path], "\n")

		changeDesc := fmt.Sprintf("Update %s content", fileType)
		if first := firstNonBlank(lines); first != "" && looksLikeDeclaration(first) {
			if len(first) > 40 {
				first = first[:40]
			}
			changeDesc = first
		}

		preview := lines
		ellipsis := ""
		if len(preview) > 5 {
			preview = preview[:5]
			ellipsis = "\n..."
		}

		title = fmt.Sprintf("Update %s: %s", path, changeDesc)
		description = fmt.Sprintf("Modified %s with the following changes:\n\n```\n%s%s\n```",
			path, strings.Join(preview, "\n"), ellipsis)
		return title, description
	}

	fileTypes := make(map[string]struct{})
	for _, path := range paths {
		fileTypes[fileTypeOf(path)] = struct{}{}
	}

	if len(fileTypes) == 1 {
		title = fmt.Sprintf("Update %d %s files", len(paths), fileTypeOf(paths[0]))
	} else {
		title = fmt.Sprintf("Update %d files", len(paths))
	}

	var b strings.Builder
	b.WriteString("Modified files:")
	for _, path := range paths {
		b.WriteString("\n- ")
		b.WriteString(path)
	}
	return title, b.String()
}

func fileTypeOf(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "file"
	}
	return ext
}

func firstNonBlank(lines []string) string {
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func looksLikeDeclaration(line string) bool {
	for _, prefix := range []string{"#", "class ", "def ", "func ", "function"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
