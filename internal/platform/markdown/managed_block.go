package markdown

import (
	"fmt"
	"strings"
)

// ManagedBlock is a generated region of a note delimited by two HTML comment
// markers. Text outside the markers belongs to the user.
type ManagedBlock struct {
	Start string
	End   string
}

func (m ManagedBlock) Replace(body, generated string) string {
	start := strings.Index(body, m.Start)
	end := strings.Index(body, m.End)
	block := m.Start + "\n" + generated + "\n" + m.End

	if start >= 0 && end > start {
		end += len(m.End)
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Extract returns the generated text between the markers.
func (m ManagedBlock) Extract(body string) (string, bool) {
	start := strings.Index(body, m.Start)
	end := strings.Index(body, m.End)
	if start < 0 || end < start {
		return "", false
	}
	return strings.Trim(body[start+len(m.Start):end], "\n"), true
}

// Table renders a GitHub-flavored table with right-aligned columns.
func Table(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n|")
	for range headers {
		b.WriteString("---:|")
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "\n| %s |", strings.Join(row, " | "))
	}
	return b.String()
}
