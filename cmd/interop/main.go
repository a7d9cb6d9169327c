package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/interop"
	"github.com/wippyai/hostinterop/runtime"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a TOML config file")
		demoName    = flag.String("demo", "", "Run a demo: list, map, buffer, numbers, overloads, all")
		msgName     = flag.String("msg", "", "Message to send (e.g. GetArraySize)")
		target      = flag.String("target", "", "Demo object receiving -msg")
		list        = flag.Bool("list", false, "List messages and demo objects and exit")
		stats       = flag.Bool("stats", false, "Print dispatch statistics at exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
		args        argList
	)
	flag.Var(&args, "arg", "Message argument, type:value or bare value (repeatable)")
	flag.Parse()

	if err := run(*configFile, *demoName, *msgName, *target, args, *list, *stats, *interactive, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadOptions(configFile string, verbose bool) (runtime.Options, error) {
	opts := runtime.DefaultOptions()
	if configFile != "" {
		var err error
		if opts, err = runtime.LoadConfig(configFile); err != nil {
			return opts, err
		}
	} else if lvl := os.Getenv(runtime.EnvLogLevel); lvl != "" {
		opts.LogLevel = lvl
	}
	if verbose {
		opts.LogLevel = "debug"
	}
	if strings.EqualFold(opts.LogLevel, "debug") {
		logger, err := opts.NewLogger()
		if err != nil {
			return opts, err
		}
		opts.Logger = logger
	}
	return opts, nil
}

func run(configFile, demoName, msgName, target string, rawArgs []string, list, stats, interactive, verbose bool) error {
	opts, err := loadOptions(configFile, verbose)
	if err != nil {
		return err
	}
	if opts.Logger != nil {
		defer func() { _ = opts.Logger.Sync() }()
	}

	eng, err := runtime.New(opts)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close()

	ctx, err := eng.NewContext()
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	targets, err := buildTargets(ctx.Machine())
	if err != nil {
		return fmt.Errorf("build demo objects: %w", err)
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	out := newPrinter(os.Stdout, tty, ctx.Library())

	switch {
	case list:
		out.list(targets)
	case interactive:
		if !tty {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		if err := runInteractive(ctx.Library(), targets); err != nil {
			return err
		}
	case demoName != "":
		ds, err := findDemo(demoName)
		if err != nil {
			return err
		}
		for _, d := range ds {
			out.demo(d, targets)
		}
	case msgName != "":
		if err := out.send(targets, target, msgName, rawArgs); err != nil {
			return err
		}
	case !stats:
		fmt.Fprintln(os.Stderr, "Usage: interop -demo <name|all> [-stats]")
		fmt.Fprintln(os.Stderr, "       interop -msg <Message> -target <object> [-arg type:value ...]")
		fmt.Fprintln(os.Stderr, "       interop -list")
		fmt.Fprintln(os.Stderr, "       interop -i  (interactive mode)")
		return fmt.Errorf("nothing to do")
	}

	if stats {
		out.stats(eng.Stats())
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer writes results, styled only when attached to a terminal
type printer struct {
	w     io.Writer
	color bool
	lib   *interop.Library
}

func newPrinter(w io.Writer, color bool, lib *interop.Library) *printer {
	return &printer{w: w, color: color, lib: lib}
}

func (p *printer) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) list(targets map[string]any) {
	fmt.Fprintln(p.w, p.paint(headerStyle, "Demo objects"))
	for _, name := range targetNames(targets) {
		v := targets[name]
		fmt.Fprintf(p.w, "  %-12s %s\n", name, p.paint(typeStyle, typeName(v)))
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.paint(headerStyle, "Messages"))
	for _, msg := range dispatch.Messages() {
		kind := ""
		if msg.IsQuery() {
			kind = "query"
		}
		fmt.Fprintf(p.w, "  %-32s %s\n", p.paint(msgStyle, msg.String()), p.paint(dimStyle, kind))
	}
}

func (p *printer) send(targets map[string]any, target, msgName string, rawArgs []string) error {
	msg, ok := dispatch.ParseMessage(msgName)
	if !ok {
		return fmt.Errorf("unknown message %q", msgName)
	}
	recv, err := lookupTarget(targets, target)
	if err != nil {
		return err
	}
	args, err := parseArgs(rawArgs)
	if err != nil {
		return err
	}
	p.result(target, msg, args, recv)
	return nil
}

func lookupTarget(targets map[string]any, name string) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("-target is required (have %s)", strings.Join(targetNames(targets), ", "))
	}
	recv, ok := targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q (have %s)", name, strings.Join(targetNames(targets), ", "))
	}
	return recv, nil
}

func (p *printer) demo(d demo, targets map[string]any) {
	fmt.Fprintf(p.w, "%s %s\n\n", p.paint(headerStyle, d.name), p.paint(dimStyle, d.about))
	for _, s := range d.steps {
		p.result(s.target, s.msg, s.args, targets[s.target])
	}
	fmt.Fprintln(p.w)
}

func (p *printer) result(target string, msg dispatch.Message, args []any, recv any) {
	shown := make([]string, len(args))
	for i, a := range args {
		shown[i] = formatValue(p.lib, a)
	}
	call := fmt.Sprintf("%s.%s(%s)", target, p.paint(msgStyle, msg.String()), strings.Join(shown, ", "))

	v, err := p.lib.Send(recv, msg, args...)
	if err != nil {
		fmt.Fprintf(p.w, "  %s\n    %s\n", call, p.paint(errorStyle, "error: "+err.Error()))
		return
	}
	if msg.IsQuery() || v != nil {
		fmt.Fprintf(p.w, "  %s\n    = %s %s\n", call,
			p.paint(resultStyle, formatValue(p.lib, v)),
			p.paint(typeStyle, ": "+typeName(v)))
		return
	}
	fmt.Fprintf(p.w, "  %s\n    ok\n", call)
}

func (p *printer) stats(st dispatch.Stats) {
	fmt.Fprintln(p.w, p.paint(headerStyle, "Dispatch statistics"))
	rows := []struct {
		name string
		n    uint64
	}{
		{"shared handlers", uint64(st.SharedEntries)},
		{"shared cache hits", st.PICHits},
		{"shared cache misses", st.PICMisses},
		{"cache overflows", st.PICOverflows},
		{"generic lookups", st.GenericCalls},
		{"local hits", st.LocalHits},
		{"local misses", st.LocalMisses},
		{"defaults", st.Defaults},
		{"instances", uint64(st.Instances)},
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %-22s %s\n", r.name, humanize.Comma(int64(r.n)))
	}
}
