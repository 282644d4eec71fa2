// Package shell implements the interactive vault browser: directory
// navigation, opening a race and running its consistency report, and
// inspecting the open race document.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/dgallion1/vaultlint/internal/doctree"
	"github.com/dgallion1/vaultlint/internal/parser"
	"github.com/dgallion1/vaultlint/internal/report"
	"github.com/dgallion1/vaultlint/internal/vault"
)

// Verbs lists the shell commands, in help order.
var Verbs = []string{"ls", "cd", "open", "close", "property", "content", "links", "city", "help", "exit"}

// raceVerbs act on the open race and accept a leading race name.
var raceVerbs = map[string]bool{"property": true, "content": true, "links": true, "city": true}

const helpText = `Available commands:
  ls                     - List all folders and files in the current directory
  cd <name>              - Change directory to <name> and list its contents
  cd ..                  - Move to the parent directory
  open <name>            - Open the race matching <name> in '00 - Races' and report issues
  close                  - Close the currently opened race
  [<race>] property      - View the properties of the opened race
  [<race>] content       - View the content of the opened race
                           (add --plain to strip Markdown formatting)
  [<race>] links         - View the links in the opened race
  [<race>] city          - List all cities in '02 - Lieux/<race>'
  help                   - Show this help message
  exit                   - Exit the program
`

// Shell holds the navigation state of one interactive session.
type Shell struct {
	vault  *vault.Vault
	cursor *vault.Cursor
	engine *report.Engine
	styles Styles
	log    *slog.Logger
	out    io.Writer

	race *openRace
}

type openRace struct {
	name string
	doc  *doctree.Document
}

func New(v *vault.Vault, engine *report.Engine, styles Styles, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Shell{
		vault:  v,
		cursor: v.Cursor(),
		engine: engine,
		styles: styles,
		log:    log,
		out:    io.Discard,
	}
}

// Prompt shows the open race, if any.
func (s *Shell) Prompt() string {
	if s.race != nil {
		return s.styles.render(s.styles.Prompt, fmt.Sprintf("vaultlint [%s]", s.race.name)) + ": "
	}
	return s.styles.render(s.styles.Prompt, "vaultlint") + ": "
}

// Execute runs one command line, writing to out. It returns true when the
// session should end.
func (s *Shell) Execute(out io.Writer, line string) (quit bool) {
	s.out = out
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch verb {
	case "ls":
		s.ls()
	case "cd":
		s.cd(arg)
	case "open":
		s.open(arg)
	case "close":
		s.close()
	case "help":
		io.WriteString(s.out, helpText)
	case "exit", "quit":
		s.println("Exiting the program.")
		return true
	default:
		plain := false
		if n := len(fields); n > 1 && fields[n-1] == "--plain" {
			plain = true
			fields = fields[:n-1]
			verb = strings.ToLower(fields[0])
		}
		if raceVerbs[verb] && len(fields) == 1 {
			s.raceCommand("", verb, plain)
			return false
		}
		if action := strings.ToLower(fields[len(fields)-1]); len(fields) >= 2 && raceVerbs[action] {
			name := strings.Join(fields[:len(fields)-1], " ")
			s.raceCommand(name, action, plain)
			return false
		}
		s.errorf("Unknown command: %s", strings.TrimSpace(line))
	}
	return false
}

func (s *Shell) ls() {
	folders, files, err := s.cursor.List()
	if err != nil {
		s.errorf("The path '%s' does not exist.", s.cursor.Display())
		return
	}
	if len(folders) == 0 && len(files) == 0 {
		s.println(fmt.Sprintf("No folders or files found in '%s'.", s.cursor.Display()))
		return
	}
	s.println(s.styles.render(s.styles.Title, fmt.Sprintf("Contents of '%s':", s.cursor.Display())))
	for _, f := range folders {
		s.println("📁 " + s.styles.render(s.styles.Folder, vault.CleanName(f)))
	}
	for _, f := range files {
		s.println("📄 " + s.styles.render(s.styles.File, f))
	}
}

func (s *Shell) cd(target string) {
	if target == "" {
		s.errorf("Usage: cd <name>")
		return
	}
	err := s.cursor.Change(target)
	switch {
	case errors.Is(err, vault.ErrEscapesRoot):
		s.errorf("You are at the root of the vault. Cannot go up further.")
		return
	case err != nil:
		s.errorf("Folder '%s' not found.", target)
		return
	}
	s.println(fmt.Sprintf("Changed directory to '%s'", s.cursor.Display()))
	s.ls()
}

func (s *Shell) open(name string) {
	if name == "" {
		s.errorf("Usage: open <name>")
		return
	}
	race, err := s.vault.ResolveRace(name)
	if err != nil {
		var nf *vault.NotFoundError
		if errors.As(err, &nf) && nf.What == "race file" {
			s.errorf("No '%s' file found in folder '%s'.", path.Base(nf.Path), path.Base(path.Dir(nf.Path)))
		} else {
			s.errorf("No file or folder containing '%s' found in '%s'.", name, vault.RacesDir)
		}
		return
	}

	doc, err := parser.ParseFile(s.vault.FS(), race.Document)
	if err != nil {
		s.errorf("Could not open race '%s': %v", race.Name, err)
		return
	}
	s.race = &openRace{name: race.Name, doc: doc}
	s.log.Debug("race opened", "race", race.Name, "document", race.Document)
	s.println(s.styles.render(s.styles.Success, fmt.Sprintf("Race '%s' opened.", race.Name)))

	s.printReport(s.engine.ReportIssues(race.Name))
}

func (s *Shell) printReport(rep *report.Report) {
	s.println(s.styles.render(s.styles.Title, fmt.Sprintf("Issues for race '%s':", rep.Race)))
	if len(rep.Findings) == 0 {
		s.println("  " + s.styles.render(s.styles.Success, "No issues found."))
	}
	for _, f := range rep.Findings {
		st := s.styles.Warning
		if f.Category == report.ParseError || f.Category == report.DirectoryNotFound {
			st = s.styles.Error
		}
		s.println("  " + s.styles.render(st, f.Message))
	}
	if len(rep.MagicLinks) > 0 {
		s.println(s.styles.render(s.styles.Muted, "Linked magic files found: "+strings.Join(rep.MagicLinks, ", ")))
	}
}

func (s *Shell) close() {
	if s.race == nil {
		s.println("No race is currently opened.")
		return
	}
	s.println(fmt.Sprintf("Race '%s' closed.", s.race.name))
	s.race = nil
}

// raceCommand runs a race verb. An empty name targets the open race; a
// given name must match it, by raw or cleaned name. plain only affects
// content.
func (s *Shell) raceCommand(name, verb string, plain bool) {
	if s.race == nil || (name != "" && !strings.EqualFold(name, s.race.name) && !strings.EqualFold(name, vault.CleanName(s.race.name))) {
		s.errorf("No race is currently opened or wrong race name.")
		return
	}
	switch verb {
	case "property":
		s.property()
	case "content":
		s.content(plain)
	case "links":
		s.links()
	case "city":
		s.city()
	}
}

func (s *Shell) property() {
	s.println(s.styles.render(s.styles.Title, "Properties:"))
	props := s.race.doc.Properties
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		s.println(fmt.Sprintf("%s: %s", k, v))
	}
}

func (s *Shell) content(plain bool) {
	text := func(l string) string {
		if plain {
			return parser.PlainText(l)
		}
		return l
	}
	s.println(s.styles.render(s.styles.Title, "Content:"))
	for _, sec := range s.race.doc.Sections {
		s.println("")
		s.println(s.styles.render(s.styles.Title, "Title: "+sec.Title))
		for _, b := range sec.Buckets {
			indent := "  "
			if !b.Implicit {
				s.println("  " + s.styles.render(s.styles.Folder, "## "+b.Title))
				indent = "    "
			}
			for _, e := range b.Entries {
				switch e := e.(type) {
				case doctree.Line:
					s.println(indent + text(string(e)))
				case *doctree.Subsection:
					s.println(indent + s.styles.render(s.styles.Folder, "### "+e.Title))
					for _, l := range e.Lines {
						s.println(indent + "  " + text(l))
					}
				}
			}
		}
	}
}

func (s *Shell) links() {
	s.println(s.styles.render(s.styles.Title, "Links:"))
	for _, g := range s.race.doc.Links {
		s.println(fmt.Sprintf("%s: [%s]", g.Heading, strings.Join(g.Targets, ", ")))
	}
}

func (s *Shell) city() {
	cities, err := s.engine.Cities(s.race.name)
	if err != nil {
		s.errorf("No '%s/%s' folder found.", vault.LocationsDir, s.race.name)
		return
	}
	for _, c := range cities {
		label := c.Label()
		if c.IsCapital {
			label = s.styles.render(s.styles.Success, label)
		}
		s.println(fmt.Sprintf("%s: %s", label, c.Name))
	}
}

func (s *Shell) println(line string) {
	io.WriteString(s.out, line+"\n")
}

func (s *Shell) errorf(format string, args ...any) {
	s.println(s.styles.render(s.styles.Error, fmt.Sprintf(format, args...)))
}
