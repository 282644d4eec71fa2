package shell

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Run reads commands until exit or end of input. When both ends are a
// terminal it uses a line editor with history and tab completion.
func (s *Shell) Run(in io.Reader, out io.Writer) error {
	fin, inOK := in.(*os.File)
	fout, outOK := out.(*os.File)
	if inOK && outOK && term.IsTerminal(int(fin.Fd())) && term.IsTerminal(int(fout.Fd())) {
		return s.runTerminal(fin, fout)
	}
	return s.runLines(in, out)
}

func (s *Shell) runLines(in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		io.WriteString(out, "\n"+s.Prompt())
		if !sc.Scan() {
			io.WriteString(out, "\n")
			return sc.Err()
		}
		if s.Execute(out, sc.Text()) {
			return nil
		}
	}
}

func (s *Shell) runTerminal(in, out *os.File) error {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		s.log.Debug("raw mode unavailable, falling back to line input", "error", err)
		return s.runLines(in, out)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, s.Prompt())
	t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		return s.autoComplete(t, line, pos)
	}

	for {
		t.SetPrompt(s.Prompt())
		line, err := t.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if s.Execute(t, line) {
			return nil
		}
	}
}

// autoComplete extends the text before the cursor to the candidates'
// common prefix, and lists the candidates when it cannot extend further.
func (s *Shell) autoComplete(w io.Writer, line string, pos int) (string, int, bool) {
	head, tail := line[:pos], line[pos:]
	base, items := s.completions(head)
	if len(items) == 0 {
		return "", 0, false
	}
	next := base + commonPrefix(items)
	if len(next) > len(head) {
		return next + tail, len(next), true
	}
	if len(items) > 1 {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = strings.TrimSpace(it)
		}
		io.WriteString(w, strings.Join(names, "  ")+"\n")
	}
	return "", 0, false
}
