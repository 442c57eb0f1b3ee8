// Command nespan inspects named entity spans over document text.
// It loads a document, walks slice chains over it and translates
// classifier labels.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/FocuswithJustin/nespan/core/errors"
	"github.com/FocuswithJustin/nespan/core/labels"
	"github.com/FocuswithJustin/nespan/core/span"
	"github.com/FocuswithJustin/nespan/internal/config"
	"github.com/FocuswithJustin/nespan/internal/logging"
	"github.com/FocuswithJustin/nespan/internal/source"
)

const version = "0.1.0"

// CLI defines the command-line interface for nespan.
type CLI struct {
	Globals

	Words   WordsCmd   `cmd:"" help:"Count words and print their ranges"`
	Slice   SliceCmd   `cmd:"" help:"Apply a chain of slices and print the resulting span"`
	Label   LabelGroup `cmd:"" help:"Translate classifier labels"`
	Labels  LabelsCmd  `cmd:"" help:"Print the classifier label tables"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals are the flags shared by every command.
type Globals struct {
	Config    kong.ConfigFlag `name:"config" help:"Config file (JSON, TOML or YAML)"`
	LogLevel  string          `name:"log-level" env:"NESPAN_LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string          `name:"log-format" env:"NESPAN_LOG_FORMAT" default:"json" help:"Log format (json, text)"`
	LogFile   string          `name:"log-file" env:"NESPAN_LOG_FILE" help:"Write logs to this file, rotated, instead of stderr"`
	Segmenter string          `name:"segmenter" env:"NESPAN_SEGMENTER" default:"whitespace" help:"Word segmenter (whitespace, uax29)"`
	XPath     string          `name:"xpath" help:"Read document text from XML nodes matching this XPath"`
	MaxSize   int64           `name:"max-size" default:"268435456" help:"Maximum input size in bytes"`
	Color     string          `name:"color" default:"auto" enum:"auto,always,never" help:"Color text output (auto, always, never)"`
}

// Settings converts the parsed flags into a config.Config.
func (g Globals) Settings() config.Config {
	return config.Config{
		LogLevel:  g.LogLevel,
		LogFormat: g.LogFormat,
		LogFile:   g.LogFile,
		Segmenter: g.Segmenter,
		XPath:     g.XPath,
		MaxSize:   g.MaxSize,
	}
}

// App is the runtime state handed to every command.
type App struct {
	Ctx     context.Context
	Config  config.Config
	Out     io.Writer
	Stdin   io.Reader
	Heading *color.Color
}

// newApp validates the configuration and sets up logging.
func newApp(ctx context.Context, g Globals, out io.Writer, stdin io.Reader) (*App, error) {
	cfg := g.Settings()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyLogging(); err != nil {
		return nil, errors.Wrap(err, "configuring logging")
	}
	ctx = logging.NewRequestContext(ctx)
	logging.ConfigLoaded(ctx, string(g.Config),
		"log_level", cfg.LogLevel,
		"segmenter", cfg.Segmenter,
		"xpath", cfg.XPath,
	)
	heading := color.New(color.FgCyan, color.Bold)
	if useColor(g.Color, out) {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}
	return &App{Ctx: ctx, Config: cfg, Out: out, Stdin: stdin, Heading: heading}, nil
}

// useColor reports whether text output to w should be colored.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadDocument reads path and builds a Document with the configured tokenizer.
func (a *App) loadDocument(path string) (*span.Document, error) {
	tok, err := a.Config.Tokenizer()
	if err != nil {
		return nil, err
	}
	in, err := source.Load(a.Ctx, source.Options{
		Path:    path,
		XPath:   a.Config.XPath,
		MaxSize: a.Config.MaxSize,
		Stdin:   a.Stdin,
	})
	if err != nil {
		return nil, err
	}
	doc := span.NewDocument(in.Text, span.WithTokenizer(tok))
	logging.DocumentLoaded(a.Ctx, in.Source, doc.Len(), doc.WordLength(),
		"type", string(in.Type),
		"decompressed", in.Decompressed,
		"segmenter", a.Config.Segmenter,
	)
	return doc, nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WordsCmd prints the words of a document.
type WordsCmd struct {
	Input string `arg:"" default:"-" help:"Input file, or - for stdin"`
	JSON  bool   `name:"json" help:"Output as JSON"`
}

type wordsOutput struct {
	Source string   `json:"source"`
	Hash   string   `json:"hash"`
	Runes  int      `json:"runes"`
	Words  int      `json:"words"`
	Ranges [][2]int `json:"ranges"`
	Text   []string `json:"text"`
}

// Run executes the words command.
func (c *WordsCmd) Run(app *App) error {
	doc, err := app.loadDocument(c.Input)
	if err != nil {
		return err
	}

	words := doc.Words()
	out := wordsOutput{
		Source: c.Input,
		Hash:   doc.Hash(),
		Runes:  doc.Len(),
		Words:  len(words),
		Ranges: make([][2]int, len(words)),
		Text:   make([]string, len(words)),
	}
	for i, w := range words {
		out.Ranges[i] = [2]int{w.Start, w.End}
		out.Text[i] = doc.Subspan(span.Between(w.Start, w.End), nil).Text()
	}

	if c.JSON {
		return app.printJSON(out)
	}
	app.Heading.Fprintf(app.Out, "%d words\n", out.Words)
	for i, r := range out.Ranges {
		fmt.Fprintf(app.Out, "%d\t%d\t%d\t%s\n", i, r[0], r[1], out.Text[i])
	}
	return nil
}

// SliceCmd applies a chain of slices to a document.
type SliceCmd struct {
	Input     string   `arg:"" default:"-" help:"Input file, or - for stdin"`
	Steps     []string `name:"step" short:"s" sep:"none" required:"" placeholder:"MODE:BOUNDS" help:"Slice step, applied in order: chars:START:END or words:START:END"`
	Label     string   `name:"label" short:"l" help:"Label for the final span"`
	LabelKind string   `name:"label-kind" default:"tag" enum:"tag,entity,ref-part" help:"How --label is interpreted: a free tag, or a classifier label (entity, ref-part)"`
	WithText  bool     `name:"with-text" help:"Include the span text"`
}

type sliceOutput struct {
	span.Serialized
	DocRange [2]int `json:"doc_range"`
	Depth    int    `json:"depth"`
	Hash     string `json:"hash"`
}

// Run executes the slice command.
func (c *SliceCmd) Run(app *App) error {
	label, err := c.resolveLabel(app.Ctx)
	if err != nil {
		return err
	}

	doc, err := app.loadDocument(c.Input)
	if err != nil {
		return err
	}

	var (
		current span.Subspannable = doc
		result  *span.Span
	)
	for i, step := range c.Steps {
		mode, bounds, err := parseStep(step)
		if err != nil {
			return err
		}
		switch mode {
		case "chars":
			result = current.Subspan(bounds, nil)
		case "words":
			result, err = current.SubspanByWordIndices(bounds)
			if err != nil {
				return errors.Wrapf(err, "step %d", i+1)
			}
		}
		start, end := result.Range()
		logging.SpanSliced(app.Ctx, mode, bounds.String(), start, end, i+1)
		current = result
	}

	if label != nil {
		result = result.WithLabel(label)
	}
	start, end := result.RangeRelativeToDoc()
	return app.printJSON(sliceOutput{
		Serialized: result.Serialize(c.WithText),
		DocRange:   [2]int{start, end},
		Depth:      len(c.Steps),
		Hash:       result.Hash(),
	})
}

func (c *SliceCmd) resolveLabel(ctx context.Context) (span.Label, error) {
	if c.Label == "" {
		return nil, nil
	}
	var (
		label span.Label
		err   error
	)
	switch c.LabelKind {
	case "entity":
		label, err = labels.NamedEntityTypeFromLabel(c.Label)
	case "ref-part":
		label, err = labels.RefPartTypeFromLabel(c.Label)
	default:
		return span.Tag(c.Label), nil
	}
	if err != nil {
		logging.LabelRejected(ctx, c.LabelKind, c.Label, err)
		return nil, err
	}
	return label, nil
}

// parseStep splits "words:1:3" or "chars:[2:9]" into a mode and bounds.
func parseStep(step string) (string, span.Bounds, error) {
	mode, rest, ok := strings.Cut(step, ":")
	if !ok {
		return "", span.Bounds{}, errors.NewValidation("step", fmt.Sprintf("%q: want MODE:BOUNDS", step))
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != "chars" && mode != "words" {
		return "", span.Bounds{}, errors.NewValidation("step", fmt.Sprintf("%q: mode must be chars or words", step))
	}
	b, err := span.ParseBounds(rest)
	if err != nil {
		return "", span.Bounds{}, err
	}
	return mode, b, nil
}

// LabelGroup contains label translation commands.
type LabelGroup struct {
	Entity  LabelEntityCmd  `cmd:"" help:"Translate a named entity classifier label"`
	RefPart LabelRefPartCmd `cmd:"" name:"ref-part" help:"Translate a ref part classifier label"`
}

// LabelEntityCmd translates a named entity label.
type LabelEntityCmd struct {
	Label string `arg:"" help:"Classifier label, e.g. Citation or מקור"`
}

// Run executes the label entity command.
func (c *LabelEntityCmd) Run(app *App) error {
	t, err := labels.NamedEntityTypeFromLabel(c.Label)
	if err != nil {
		logging.LabelRejected(app.Ctx, "entity", c.Label, err)
		return err
	}
	fmt.Fprintln(app.Out, t)
	return nil
}

// LabelRefPartCmd translates a ref part label.
type LabelRefPartCmd struct {
	Label string `arg:"" help:"Classifier label, e.g. title or כותרת"`
}

// Run executes the label ref-part command.
func (c *LabelRefPartCmd) Run(app *App) error {
	t, err := labels.RefPartTypeFromLabel(c.Label)
	if err != nil {
		logging.LabelRejected(app.Ctx, "ref-part", c.Label, err)
		return err
	}
	fmt.Fprintln(app.Out, t)
	return nil
}

// LabelsCmd prints the label tables.
type LabelsCmd struct {
	Lang string `name:"lang" help:"Only show labels in this language (he, en)"`
	JSON bool   `name:"json" help:"Output as JSON"`
}

type labelTable struct {
	Entity  map[string]string `json:"entity"`
	RefPart map[string]string `json:"ref_part"`
}

// Run executes the labels command.
func (c *LabelsCmd) Run(app *App) error {
	langs := []labels.Language{labels.Hebrew, labels.English}
	switch lang := labels.Language(c.Lang); lang {
	case "":
	case labels.Hebrew, labels.English:
		langs = []labels.Language{lang}
	default:
		return errors.NewValidation("lang", fmt.Sprintf("unknown language %q: want he or en", c.Lang))
	}

	tables := make(map[labels.Language]labelTable, len(langs))
	for _, lang := range langs {
		table := labelTable{
			Entity:  map[string]string{},
			RefPart: map[string]string{},
		}
		for _, l := range labels.NamedEntityLabels(lang) {
			t, err := labels.NamedEntityTypeFromLabel(l)
			if err != nil {
				return err
			}
			table.Entity[l] = t.String()
		}
		for _, l := range labels.RefPartLabels(lang) {
			t, err := labels.RefPartTypeFromLabel(l)
			if err != nil {
				return err
			}
			table.RefPart[l] = t.String()
		}
		tables[lang] = table
	}

	if c.JSON {
		return app.printJSON(tables)
	}
	for _, lang := range langs {
		table := tables[lang]
		app.Heading.Fprintf(app.Out, "[%s]\n", lang)
		for _, l := range labels.NamedEntityLabels(lang) {
			fmt.Fprintf(app.Out, "entity\t%s\t%s\n", l, table.Entity[l])
		}
		for _, l := range labels.RefPartLabels(lang) {
			fmt.Fprintf(app.Out, "ref-part\t%s\t%s\n", l, table.RefPart[l])
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.Out, "nespan version %s\n", version)
	return nil
}

// errorKind names the sentinel err matches, for log output.
func errorKind(err error) string {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return "not_found"
	case errors.Is(err, errors.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, errors.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}

// run executes the selected command and logs how it ended.
func run(ctx *kong.Context, app *App) error {
	logging.DebugContext(app.Ctx, "command_started", "command", ctx.Command())
	err := ctx.Run(app)
	if err != nil {
		args := []any{"command", ctx.Command(), "kind", errorKind(err), "error", err.Error()}
		var ioErr *errors.IOError
		if errors.As(err, &ioErr) {
			args = append(args, "path", ioErr.Path)
		}
		logging.ErrorContext(app.Ctx, "command_failed", args...)
		return err
	}
	logging.InfoContext(app.Ctx, "command_finished", "command", ctx.Command())
	return nil
}

// newParser builds the kong parser for cli. Settings missing from the command
// line are read from the config files found in configPaths.
func newParser(cli *CLI, configPaths ...string) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("nespan"),
		kong.Description("Named entity spans over document text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(config.Loader, configPaths...),
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, config.DefaultPaths()...)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	app, err := newApp(context.Background(), cli.Globals, os.Stdout, os.Stdin)
	ctx.FatalIfErrorf(err)

	err = run(ctx, app)
	ctx.FatalIfErrorf(err)
}
