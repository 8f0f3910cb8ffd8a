package cmdparse

import (
	"sort"
	"testing"
)

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	a, b = sorted(a), sorted(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBaseCommand(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    string
	}{
		{"plain", "grep pattern file", "grep"},
		{"env assignment skipped", "JAVA_HOME=/usr/jdk sudo rm -rf", "sudo"},
		{"multiple assignments", "A=1 B=2 make all", "make"},
		{"flag with equals kept", "--foo=bar", "--foo=bar"},
		{"only assignments", "FOO=bar", ""},
		{"empty", "", ""},
		{"unterminated quote", `echo "unclosed`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseCommand(tt.segment); got != tt.want {
				t.Errorf("BaseCommand(%q) = %q, want %q", tt.segment, got, tt.want)
			}
		})
	}
}

func TestExtractCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			"assignments, separators and quotes",
			`JAVA_HOME=/usr/jdk sudo rm -rf; grep "pattern" f && echo done`,
			[]string{"sudo", "grep", "echo"},
		},
		{"single command", "ls -la", []string{"ls"}},
		{"pipe", "cat f | grep x | wc -l", []string{"cat", "grep", "wc"}},
		{"and or", "make && echo ok || echo fail", []string{"make", "echo"}},
		{"background", "sleep 10 & echo started", []string{"sleep", "echo"}},
		{"separator inside quotes ignored", `echo "a && b; c"`, []string{"echo"}},
		{"single quotes", `echo 'x | y'`, []string{"echo"}},
		{"escaped separator", `echo a\&\&b`, []string{"echo"}},
		{"subshell", "(cd /tmp && rm f); ls", []string{"cd", "rm", "ls"}},
		{"nested subshell", "(a && (b; c)) | d", []string{"a", "b", "c", "d"}},
		{"unbalanced paren kept literal", "echo (oops", []string{"echo"}},
		{"duplicates collapse", "ls; ls; ls -la", []string{"ls"}},
		{"empty segments dropped", ";;&&", nil},
		{"empty line", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCommands(tt.line)
			if !equalSets(got, tt.want) {
				t.Errorf("ExtractCommands(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestExtractCommandsNoDuplicates(t *testing.T) {
	got := ExtractCommands("ls && ls | ls; (ls)")
	if len(got) != 1 || got[0] != "ls" {
		t.Errorf("expected deduplicated {ls}, got %v", got)
	}
}
