// Package cmdparse splits composite shell command lines into their distinct
// base commands so each can be screened against the deny-list.
package cmdparse

import (
	"log/slog"
	"strings"

	"github.com/google/shlex"
)

// separators, longest first so "&&" wins over "&" and "||" over "|".
var separators = []string{"&&", "||", ";", "|", "&"}

// BaseCommand returns the first non-assignment token of a shell segment:
// tokens containing "=" that do not start with "-" are environment-variable
// prefixes (FOO=bar cmd) and are skipped. Unparseable segments yield "".
func BaseCommand(segment string) string {
	tokens, err := shlex.Split(segment)
	if err != nil {
		slog.Debug("unparseable command segment", "segment", segment, "error", err)
		return ""
	}
	for _, tok := range tokens {
		if strings.Contains(tok, "=") && !strings.HasPrefix(tok, "-") {
			continue
		}
		return tok
	}
	return ""
}

// ExtractCommands scans line left to right and returns the deduplicated base
// commands of every segment, honoring quotes, backslash escapes, the shell
// separators, and parenthesized subshells (whose contents are parsed
// recursively and unioned in).
func ExtractCommands(line string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(names []string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	var segment strings.Builder
	flush := func() {
		trimmed := strings.TrimSpace(segment.String())
		segment.Reset()
		if trimmed == "" {
			return
		}
		add([]string{BaseCommand(trimmed)})
	}

	inQuotes := false
	var quoteChar byte
	escaped := false

	i := 0
	n := len(line)
	for i < n {
		ch := line[i]

		if escaped {
			segment.WriteByte(ch)
			escaped = false
			i++
			continue
		}
		if ch == '\\' {
			segment.WriteByte(ch)
			escaped = true
			i++
			continue
		}

		if ch == '"' || ch == '\'' {
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			}
			segment.WriteByte(ch)
			i++
			continue
		}
		if inQuotes {
			segment.WriteByte(ch)
			i++
			continue
		}

		if ch == '(' {
			// Find the matching close paren, accounting for nesting, and
			// parse the subshell body on its own.
			depth := 1
			j := i + 1
			for j < n && depth > 0 {
				switch line[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth == 0 {
				add(ExtractCommands(line[i+1 : j-1]))
				i = j
				continue
			}
			// Unbalanced: fall through and keep the char.
		}

		matched := ""
		for _, sep := range separators {
			if strings.HasPrefix(line[i:], sep) {
				matched = sep
				break
			}
		}
		if matched != "" {
			flush()
			i += len(matched)
			continue
		}

		segment.WriteByte(ch)
		i++
	}
	flush()

	return out
}
