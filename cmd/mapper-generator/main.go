// Command mapper-generator resolves object mappings between the types of Go
// packages without running them.
//
//	mapper-generator [flags] plan <source type> <target type> [<source type> <target type> ...]
//	mapper-generator [flags] check
//	mapper-generator version
//
// plan prints how every target property of each pair, and of the nested
// pairs it depends on, is resolved. check resolves every pair declared in
// the mapping file and fails on configuration errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	goversion "github.com/caarlos0/go-version"
	"github.com/davecgh/go-spew/spew"

	"mapper-generator/internal/analyze"
	"mapper-generator/internal/mapping"
	"mapper-generator/internal/plan"
	"mapper-generator/internal/transform"
)

const (
	application = "mapper-generator"
	description = "Resolves object-to-object mappings between Go types"
	website     = ""
)

var (
	version   = "0.1.0"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""

	debug       = flag.Bool("debug", false, "Enable debug logging")
	logFile     = flag.String("log-file", "", "Path to a file where logs should be written. If empty, logs go to stderr.")
	pkgs        = flag.String("pkg", "./...", "Comma separated package patterns holding the mapped types")
	mappingFile = flag.String("mapping", "", "YAML mapping file with property overrides and discriminators")
	strict      = flag.Bool("strict", false, "Treat unmapped required properties as errors")
	dump        = flag.Bool("dump", false, "Dump the resolved mappings")
	write       = flag.String("write", "", "Write the resolved mappings as a mapping file skeleton to this path")
)

var errUsage = errors.New("usage")

func main() {
	flag.Usage = usage
	flag.Parse()

	closeLog, err := setupLogging()
	if err != nil {
		slog.Error("Failed to open log file", "file", *logFile, "error", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		} else {
			slog.Error("mapper-generator failed", "error", err)
		}

		closeLog()
		os.Exit(1)
	}
}

func setupLogging() (func(), error) {
	logWriter := os.Stderr
	closeLog := func() {}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeLog, err
		}

		logWriter = f
		closeLog = func() { _ = f.Close() }
	}

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	})))

	return closeLog, nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] plan <source type> <target type> [...]\n", application)
	fmt.Fprintf(out, "       %s [flags] check\n", application)
	fmt.Fprintf(out, "       %s version\n\n", application)
	fmt.Fprintln(out, "Types are written as alias.Name, for example store.Customer.")
	flag.PrintDefaults()
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "version":
		fmt.Fprintln(out, buildVersion(version, commit, date, builtBy, treeState).String())
		return nil
	case "plan":
		if len(args) < 3 || len(args)%2 == 0 {
			return errUsage
		}

		return planPairs(args[1:], out)
	case "check":
		if *mappingFile == "" {
			return fmt.Errorf("check needs -mapping: %w", errUsage)
		}

		return check(out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

// session resolves pairs against the loaded packages.
type session struct {
	provider *analyze.StaticProvider
	planner  *plan.Resolver
	mappings *mapping.MappingFile
	resolved map[string]*plan.ResolvedMapping
	order    []*plan.ResolvedMapping
}

func newSession() (*session, error) {
	patterns := strings.Split(*pkgs, ",")

	slog.Debug("Loading packages", "patterns", patterns)

	provider, err := analyze.LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	s := &session{
		provider: provider,
		mappings: &mapping.MappingFile{Version: "1"},
		resolved: make(map[string]*plan.ResolvedMapping),
	}

	if *mappingFile != "" {
		mf, err := mapping.LoadFile(*mappingFile)
		if err != nil {
			return nil, err
		}

		if res := mapping.Validate(mf); res.HasErrors() {
			return nil, fmt.Errorf("%s: %w", *mappingFile, res.Error())
		}

		s.mappings = mf
	}

	cfg := plan.DefaultConfig()
	cfg.Strict = *strict

	transformers := transform.NewResolver(provider,
		transform.WithPolymorphic(func(d *analyze.TypeDescriptor) bool { return s.planner.IsPolymorphic(d) }),
	)
	s.planner = plan.NewResolver(provider, transformers,
		plan.WithMappings(s.mappings),
		plan.WithTypeLookup(provider.Lookup),
		plan.WithConfig(cfg),
	)

	return s, nil
}

// resolve resolves a pair and, breadth first, the nested pairs it depends on.
func (s *session) resolve(source, target *analyze.TypeDescriptor) error {
	queue := []transform.Dependency{{Source: source, Target: target}}

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]

		name := dep.Source.Base().ID() + "->" + dep.Target.Base().ID()
		if _, ok := s.resolved[name]; ok {
			continue
		}

		m, err := s.planner.Resolve(dep.Source, dep.Target)
		if err != nil {
			return err
		}

		slog.Debug("Resolved pair", "pair", m.Pair(), "properties", len(m.Properties))
		m.Diagnostics.Log(slog.Default())

		s.resolved[name] = m
		s.order = append(s.order, m)
		queue = append(queue, m.Dependencies()...)
	}

	return nil
}

func (s *session) lookupPair(source, target string) (*analyze.TypeDescriptor, *analyze.TypeDescriptor, error) {
	src, err := s.provider.Lookup(source)
	if err != nil {
		return nil, nil, err
	}

	dst, err := s.provider.Lookup(target)
	if err != nil {
		return nil, nil, err
	}

	return src, dst, nil
}

func (s *session) print(out io.Writer) error {
	for i, m := range s.order {
		if i > 0 {
			fmt.Fprintln(out)
		}

		if err := m.Report(out); err != nil {
			return err
		}
	}

	if *dump {
		cfg := spew.ConfigState{Indent: "  ", MaxDepth: 4, DisablePointerAddresses: true, SortKeys: true}
		for _, m := range s.order {
			fmt.Fprintf(out, "\n--- %s ---\n", m.Pair())
			cfg.Fdump(out, m)
		}
	}

	if *write != "" {
		slog.Info("Writing mapping skeleton", "file", *write)

		if err := mapping.WriteFile(plan.Export(s.order...), *write); err != nil {
			return err
		}
	}

	return nil
}

func planPairs(args []string, out io.Writer) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	for i := 0; i < len(args); i += 2 {
		src, dst, err := s.lookupPair(args[i], args[i+1])
		if err != nil {
			return err
		}

		if err := s.resolve(src, dst); err != nil {
			return err
		}
	}

	return s.print(out)
}

func check(out io.Writer) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	var errs []error

	for _, tm := range s.mappings.TypeMappings {
		src, dst, err := s.lookupPair(tm.Source, tm.Target)
		if err == nil {
			err = s.resolve(src, dst)
		}

		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(out, "FAIL %s -> %s: %v\n", tm.Source, tm.Target, err)

			continue
		}

		fmt.Fprintf(out, "ok   %s -> %s\n", tm.Source, tm.Target)
	}

	return errors.Join(errs...)
}

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(application, description, website),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
