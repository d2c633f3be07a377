// Package main provides the CLI entrypoint for product-sync.
//
// product-sync keeps a CAD product tree and a target engineering data model
// in step:
//   - push maps the product tree onto the target iteration
//   - pull plans source nodes for target elements and hands them to the CAD tool
//   - check validates the stored mapping configuration
//
// Correspondences between both sides are persisted in the backend selected
// by the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"product-sync/internal/bridge"
	"product-sync/internal/config"
	"product-sync/internal/diagnostic"
	"product-sync/internal/logging"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/persistence"
	"product-sync/internal/persistence/file"
	"product-sync/internal/persistence/memory"
	"product-sync/internal/persistence/postgres"
	"product-sync/internal/product"
	"product-sync/internal/rule"
)

const usage = `usage: product-sync <command> [flags]

Commands:
  push   map the product tree onto the target iteration
  pull   transfer target elements to the product tree
  check  validate the stored mapping configuration

The root of the product tree must be an assembly or a part. A component
wrapping a single part is mapped as a usage and needs a parent assembly.

Run product-sync <command> -h for the flags of a command.
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		stop()
		os.Exit(1)
	}
}

// flags are shared by every command.
type flags struct {
	config  string
	tree    string
	target  string
	elems   string
	parent  string
	out     string
	verbose bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	command := args[0]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags

	fs.StringVar(&f.config, "config", "", "Path to the configuration file")
	fs.BoolVar(&f.verbose, "v", false, "Log at debug level")

	switch command {
	case "push":
		fs.StringVar(&f.tree, "tree", "", "Path to the product tree YAML")
		fs.StringVar(&f.target, "target", "", "Path to the target iteration snapshot, rewritten after the run")
	case "pull":
		fs.StringVar(&f.tree, "tree", "", "Path to the product tree YAML")
		fs.StringVar(&f.target, "target", "", "Path to the target iteration snapshot")
		fs.StringVar(&f.elems, "elements", "", "Comma separated short names of the elements to transfer")
		fs.StringVar(&f.parent, "parent", "", "Identifier of the node new nodes are created under")
		fs.StringVar(&f.out, "out", "placeholders.yaml", "Path the placeholders are written to")
	case "check":
		fs.StringVar(&f.target, "target", "", "Path to the target iteration snapshot, enables binding checks")
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return errUsage
	}

	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}

	if f.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend, closeBackend, err := openBackend(ctx, cfg.Backend, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	connector := &product.FileConnector{TreePath: f.tree, OutputPath: f.out}

	facade := bridge.New(backend, connector, logger, bridge.Options{
		Bindings:     cfg.Bindings,
		Domain:       cfg.Domain,
		Option:       cfg.Option,
		State:        cfg.State,
		PruneOrphans: cfg.PruneOrphans,
	})

	if err := facade.Open(ctx, cfg.Configuration); err != nil {
		return err
	}

	switch command {
	case "push":
		err = push(ctx, facade, f, logger, stdout)
	case "pull":
		err = pull(ctx, facade, f, stdout)
	case "check":
		err = check(facade, f, stdout)
	}

	printDiagnostics(stderr, facade.Diagnostics())

	if cfg.MetricsFile != "" {
		if mErr := metrics.WriteTextfile(cfg.MetricsFile); mErr != nil {
			logger.Warn("failed to write metrics", zap.Error(mErr))
		}
	}

	return err
}

func openBackend(ctx context.Context, cfg config.BackendConfig, logger *zap.Logger) (persistence.Backend, func(), error) {
	switch cfg.Kind {
	case config.BackendMemory:
		return memory.NewStore(), func() {}, nil
	case config.BackendFile:
		return file.NewStore(cfg.Path), func() {}, nil
	case config.BackendPostgres:
		store, err := postgres.NewStore(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}

		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}

		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}

func push(ctx context.Context, facade *bridge.Facade, f flags, logger *zap.Logger, stdout io.Writer) error {
	if f.tree == "" || f.target == "" {
		return fmt.Errorf("push needs -tree and -target: %w", errUsage)
	}

	it, err := model.LoadIterationFile(f.target)
	if err != nil {
		return err
	}

	mapped, err := facade.Push(ctx, nil, it)
	if err != nil {
		return err
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		logger.Debug("mapped elements", zap.String("dump", spew.Sdump(summarize(mapped))))
	}

	if err := model.WriteIterationFile(it, f.target); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Mapped %d elements, %d correspondences stored\n", len(mapped), facade.Store().Len())

	return nil
}

func pull(ctx context.Context, facade *bridge.Facade, f flags, stdout io.Writer) error {
	if f.tree == "" || f.target == "" || f.elems == "" {
		return fmt.Errorf("pull needs -tree, -target and -elements: %w", errUsage)
	}

	it, err := model.LoadIterationFile(f.target)
	if err != nil {
		return err
	}

	tree, err := product.LoadTreeFile(f.tree)
	if err != nil {
		return err
	}

	var parent *product.Node

	if f.parent != "" {
		n, ok := product.Index(tree)[f.parent]
		if !ok {
			return fmt.Errorf("parent node %q not in the product tree", f.parent)
		}

		parent = n
	}

	var requests []rule.Request

	for _, sn := range strings.Split(f.elems, ",") {
		el, err := it.ElementByShortName(strings.TrimSpace(sn))
		if err != nil {
			return err
		}

		requests = append(requests, rule.Request{Element: el, Parent: parent})
	}

	res, err := facade.Pull(ctx, requests, tree, it)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Planned %d placeholders into %s, %d orphaned correspondences\n",
		len(res.Placeholders), f.out, len(res.Orphans))

	return nil
}

func check(facade *bridge.Facade, f flags, stdout io.Writer) error {
	var it *model.Iteration

	if f.target != "" {
		loaded, err := model.LoadIterationFile(f.target)
		if err != nil {
			return err
		}

		it = loaded
	}

	diags, err := facade.Check(it)
	if err != nil {
		return err
	}

	if out := diags.String(); out != "" {
		fmt.Fprintln(stdout, out)
	}

	if !diags.IsValid() {
		return diags.Error()
	}

	fmt.Fprintf(stdout, "Configuration OK: %d correspondences\n", facade.Store().Len())

	return nil
}

func printDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	if out := diags.String(); out != "" {
		fmt.Fprintln(w, out)
	}
}

type mappedPair struct {
	Node    string
	Element string
}

func summarize(mapped []rule.MappedElement) []mappedPair {
	result := make([]mappedPair, len(mapped))
	for i, m := range mapped {
		result[i] = mappedPair{Node: m.Node.Identifier, Element: m.Element.Ident().ShortName}
	}

	return result
}
