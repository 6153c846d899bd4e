package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"

	"goelfview/bytebuf"
	"goelfview/elfview"
)

// UI is the line-oriented terminal used by the interactive shell.
type UI interface {
	// ReadLine returns a line of text read from the user. prompt is
	// printed before reading.
	ReadLine(prompt string) (string, error)
	// Print shows a message to the user.
	Print(args ...any)
	// PrintErr shows an error message to the user.
	PrintErr(args ...any)
}

func newUI() UI {
	rl, err := readline.New("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fall back to the default UI due to a failure in initializing readline: %v\n", err)
		return &stdUI{r: bufio.NewReader(os.Stdin)}
	}
	return &readlineUI{rl: rl}
}

type stdUI struct {
	r *bufio.Reader
}

func (ui *stdUI) ReadLine(prompt string) (string, error) {
	os.Stdout.WriteString(prompt)
	return ui.r.ReadString('\n')
}

func (ui *stdUI) Print(args ...any) {
	fprintln(os.Stderr, args)
}

func (ui *stdUI) PrintErr(args ...any) {
	fprintln(os.Stderr, args)
}

// readlineUI implements UI using the github.com/chzyer/readline library.
type readlineUI struct {
	rl *readline.Instance
}

func (r *readlineUI) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

// Print writes to stderr as stdout is reserved for regular output.
func (r *readlineUI) Print(args ...any) {
	fprintln(r.rl.Stderr(), args)
}

// PrintErr is Print colored in red.
func (r *readlineUI) PrintErr(args ...any) {
	text := fmt.Sprint(args...)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(r.rl.Stderr(), "\033[0;31m"+text+"\033[0m")
}

func fprintln(w io.Writer, args []any) {
	text := fmt.Sprint(args...)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	io.WriteString(w, text)
}

type shellCommand struct {
	usage string
	help  string
	run   func(args []string) error
}

// runShell reads commands from ui and writes views of buf to out until the
// user quits or input ends.
func runShell(ui UI, buf *bytebuf.Buffer, out io.Writer, opts *reportOptions) error {
	id, err := elfview.ReadIdent(buf)
	if err != nil {
		return err
	}
	if id.Class == elfview.Class64 {
		return interact[uint64](ui, buf, out, opts)
	}
	return interact[uint32](ui, buf, out, opts)
}

func interact[W elfview.Word](ui UI, buf *bytebuf.Buffer, out io.Writer, opts *reportOptions) error {
	h, err := elfview.ReadHeader[W](buf)
	if err != nil {
		return err
	}
	commands := shellCommands(h, out, opts)

	ui.Print(fmt.Sprintf("%s %s file, %d sections, %d segments. Type \"help\" for commands.",
		h.Ident.Class, h.Type, h.Sections().Len(), h.Programs().Len()))
	for {
		line, err := ui.ReadLine("(goelfview) ")
		if err != nil {
			if err != io.EOF {
				return err
			}
			if line == "" {
				return nil
			}
		}
		args, err := shellquote.Split(line)
		if err != nil {
			ui.PrintErr(err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit", "q":
			return nil
		case "help":
			ui.Print(shellHelp(commands, args[1:]))
			continue
		}
		cmd, ok := commands[args[0]]
		if !ok {
			ui.PrintErr(fmt.Sprintf("unrecognized command: %q", args[0]))
			continue
		}
		if err := cmd.run(args[1:]); err != nil {
			ui.PrintErr(err)
		}
	}
}

func shellHelp(commands map[string]shellCommand, args []string) string {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			return fmt.Sprintf("unknown command %q", args[0])
		}
		return fmt.Sprintf("%s\n  %s", cmd.usage, cmd.help)
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-28s %s\n", commands[name].usage, commands[name].help)
	}
	b.WriteString("  quit                         Exit the shell")
	return b.String()
}

func shellCommands[W elfview.Word](h *elfview.Header[W], out io.Writer, opts *reportOptions) map[string]shellCommand {
	// Each command gets a fresh report so that arguments do not leak between
	// commands.
	with := func(update func(o *reportOptions)) *report[W] {
		o := *opts
		if update != nil {
			update(&o)
		}
		return newReport(h, out, &o)
	}
	noArgs := func(name string, fn func(r *report[W]) error) func([]string) error {
		return func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%s takes no arguments", name)
			}
			return fn(with(nil))
		}
	}

	return map[string]shellCommand{
		"header": {
			usage: "header",
			help:  "Show the ELF file header",
			run:   noArgs("header", (*report[W]).printHeader),
		},
		"sections": {
			usage: "sections [pattern...]",
			help:  "List section headers, optionally only those matching patterns",
			run: func(args []string) error {
				return with(func(o *reportOptions) { o.Filter = strings.Join(args, ",") }).printSections()
			},
		},
		"segments": {
			usage: "segments",
			help:  "List program headers",
			run:   noArgs("segments", (*report[W]).printSegments),
		},
		"symbols": {
			usage: "symbols [-demangle] [section]",
			help:  "List symbols of every symbol table, or of one",
			run: func(args []string) error {
				demangle := false
				if len(args) > 0 && args[0] == "-demangle" {
					demangle = true
					args = args[1:]
				}
				if len(args) > 1 {
					return fmt.Errorf("usage: symbols [-demangle] [section]")
				}
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				return with(func(o *reportOptions) { o.Demangle = o.Demangle || demangle }).printSymbols(name)
			},
		},
		"relocs": {
			usage: "relocs [section]",
			help:  "List relocations of every REL and RELA section, or of one",
			run: func(args []string) error {
				if len(args) > 1 {
					return fmt.Errorf("usage: relocs [section]")
				}
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				return with(nil).printRelocs(name)
			},
		},
		"dynamic": {
			usage: "dynamic",
			help:  "Show the dynamic section",
			run:   noArgs("dynamic", (*report[W]).printDynamic),
		},
		"analyze": {
			usage: "analyze",
			help:  "Section entropy, hashes and notable strings",
			run:   noArgs("analyze", (*report[W]).printAnalysis),
		},
		"verify": {
			usage: "verify",
			help:  "Run consistency checks",
			run:   noArgs("verify", (*report[W]).printVerify),
		},
		"interp": {
			usage: "interp",
			help:  "Show the program interpreter",
			run: func(args []string) error {
				path, err := h.Interpreter()
				if err != nil {
					return err
				}
				if path == "" {
					path = "(none)"
				}
				_, err = fmt.Fprintln(out, path)
				return err
			},
		},
		"str": {
			usage: "str SECTION INDEX",
			help:  "Look up a string in a string table section",
			run: func(args []string) error {
				if len(args) != 2 {
					return fmt.Errorf("usage: str SECTION INDEX")
				}
				idx, err := strconv.ParseUint(args[1], 0, 32)
				if err != nil {
					return fmt.Errorf("bad index %q: %w", args[1], err)
				}
				sec, err := h.SectionByName(args[0])
				if err != nil {
					return err
				}
				st, err := elfview.Cast[elfview.StringTable[W]](sec)
				if err != nil {
					return err
				}
				s, err := st.Get(uint32(idx), "")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%q\n", s)
				return err
			},
		},
	}
}
