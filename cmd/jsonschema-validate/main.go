// Command jsonschema-validate checks JSON, YAML or Starlark documents
// against a JSON Schema.
//
// Usage:
//
//	jsonschema-validate -schema person.json alice.json bob.yaml
//	jsonschema-validate -schema https://example.com/s.json -pointer /definitions/name - < name.json
//	jsonschema-validate -schema person.json -graph dot
//
// It exits 1 when an instance is invalid and 2 when the schema cannot be
// loaded or an instance cannot be read.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/albertocavalcante/go-jsonschema"
	"github.com/albertocavalcante/go-jsonschema/constraint"
	"github.com/albertocavalcante/go-jsonschema/docparse"
	"github.com/albertocavalcante/go-jsonschema/fetch"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	schema      string
	pointer     string
	graph       string
	engine      string
	idKeyword   string
	cacheDir    string
	noRewriteID bool
	verbose     bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonschema-validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.schema, "schema", "", "schema URI or file path (required)")
	fs.StringVar(&opts.pointer, "pointer", "", "validate against the subschema at this JSON Pointer")
	fs.StringVar(&opts.graph, "graph", "", "print the reference graph as text, dot or json")
	fs.StringVar(&opts.engine, "engine", "ecmascript", "pattern engine: ecmascript or re2")
	fs.StringVar(&opts.idKeyword, "id-keyword", "id", "member that rebases relative references")
	fs.StringVar(&opts.cacheDir, "cache-dir", "", "keep fetched remote schemas in this directory")
	fs.BoolVar(&opts.noRewriteID, "no-rewrite-id", false, "keep the id of loaded documents")
	fs.BoolVar(&opts.verbose, "v", false, "log debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if opts.schema == "" {
		fmt.Fprintln(stderr, "Error: -schema is required")
		fs.Usage()
		return exitError
	}
	if opts.graph == "" && fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: no instances given")
		fs.Usage()
		return exitError
	}

	schema, err := load(ctx, opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if opts.graph != "" {
		if err := printGraph(stdout, schema, opts.graph); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}

	code := exitValid
	for _, name := range fs.Args() {
		errs, err := validate(schema, opts.pointer, name, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", name, err)
			return exitError
		}
		if errs.Valid() {
			fmt.Fprintf(stdout, "%s: valid\n", name)
			continue
		}
		code = exitInvalid
		fmt.Fprintf(stdout, "%s: invalid\n", name)
		for _, e := range errs {
			fmt.Fprintf(stdout, "  - %s\n", e)
		}
	}
	return code
}

func load(ctx context.Context, opts options, stderr io.Writer) (*jsonschema.Schema, error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	engine, err := constraint.EngineByName(opts.engine)
	if err != nil {
		return nil, err
	}
	schemaURI, err := toURI(opts.schema)
	if err != nil {
		return nil, err
	}
	loaderOpts := []jsonschema.Option{
		jsonschema.WithLogger(logger),
		jsonschema.WithRegexpEngine(engine),
		jsonschema.WithIDKeyword(opts.idKeyword),
		jsonschema.WithRewriteID(!opts.noRewriteID),
	}
	if opts.cacheDir != "" {
		cache, err := fetch.NewDirCache(opts.cacheDir)
		if err != nil {
			return nil, err
		}
		loaderOpts = append(loaderOpts, jsonschema.WithDocumentCache(cache))
	}
	return jsonschema.Compile(ctx, schemaURI, loaderOpts...)
}

// toURI accepts either an absolute URI or a local path.
func toURI(s string) (string, error) {
	if !uri.IsLocalPath(s) {
		return s, nil
	}
	u, err := uri.FromPath(s)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func printGraph(w io.Writer, schema *jsonschema.Schema, format string) error {
	g := schema.Graph()
	switch format {
	case "text":
		fmt.Fprint(w, g.ToText())
	case "dot":
		fmt.Fprint(w, g.ToDOT())
	case "json":
		data, err := g.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	default:
		return fmt.Errorf("unknown graph format %q", format)
	}
	return nil
}

// validate reads an instance file, or stdin for "-", and decodes it by
// extension.
func validate(schema *jsonschema.Schema, pointer, name string, stdin io.Reader) (jsonschema.Errors, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	instance, err := docparse.Decode(docparse.ForURI(name), name, data)
	if err != nil {
		return nil, err
	}
	errs, err := schema.ValidateAt(instance, pointer)
	if errors.Is(err, jsonschema.ErrInvalidPointer) {
		return nil, fmt.Errorf("-pointer: %w", err)
	}
	return errs, err
}
