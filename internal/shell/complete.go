package shell

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Complete returns the candidate full lines for a partially typed line:
// verbs for the first word, folder names after `cd`, race names after
// `open`.
func (s *Shell) Complete(line string) []string {
	base, items := s.completions(line)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = base + it
	}
	return out
}

// completions splits a completion into the fixed part of line and the
// candidate endings.
func (s *Shell) completions(line string) (base string, items []string) {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")

	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		prefix := ""
		if len(fields) == 1 {
			prefix = strings.ToLower(fields[0])
		}
		for _, v := range Verbs {
			if strings.HasPrefix(v, prefix) {
				items = append(items, v+" ")
			}
		}
		return "", items
	}

	verb := strings.ToLower(fields[0])
	partial := strings.TrimLeft(strings.TrimPrefix(strings.TrimLeft(line, " "), fields[0]), " ")

	switch verb {
	case "cd":
		dir, last := "", partial
		if i := strings.LastIndex(partial, "/"); i >= 0 {
			dir, last = partial[:i+1], partial[i+1:]
		}
		c := *s.cursor
		if dir != "" && c.Change(dir) != nil {
			return "", nil
		}
		return "cd " + dir, matching(c.Folders(), last, "/")
	case "open":
		return "open ", matching(s.raceNames(), partial, "")
	}
	return "", nil
}

func (s *Shell) raceNames() []string {
	races, err := s.vault.Races()
	if err != nil {
		return nil
	}
	return races
}

// matching keeps the names starting with prefix, case-insensitively, and
// appends suffix to each.
func matching(names []string, prefix, suffix string) []string {
	p := strings.ToLower(prefix)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), p) {
			out = append(out, n+suffix)
		}
	}
	sort.Strings(out)
	return out
}

// commonPrefix is the longest prefix shared by every candidate.
func commonPrefix(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	p := candidates[0]
	for _, c := range candidates[1:] {
		for !strings.HasPrefix(c, p) {
			_, size := utf8.DecodeLastRuneInString(p)
			p = p[:len(p)-size]
		}
	}
	return p
}
