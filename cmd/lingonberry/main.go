// Command lingonberry is the CLI tool for the Lingonberry grammar runtime.
// It decodes PGF binaries, projects them to JSON, parses sentences into
// abstract syntax trees, and linearizes trees back to text.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/Lingonberry/core/chart"
	"github.com/FocuswithJustin/Lingonberry/core/expr"
	"github.com/FocuswithJustin/Lingonberry/core/jsonout"
	"github.com/FocuswithJustin/Lingonberry/core/linearize"
	"github.com/FocuswithJustin/Lingonberry/core/pgf"
	"github.com/FocuswithJustin/Lingonberry/internal/logging"
)

const version = "0.2.0"

// CLI defines the command-line interface for lingonberry.
var CLI struct {
	// Global flags
	Verbose bool `name:"verbose" short:"v" help:"Enable debug logging" env:"LINGONBERRY_VERBOSE"`
	LogJSON bool `name:"log-json" help:"Emit logs as JSON" env:"LINGONBERRY_LOG_JSON"`

	Decode    DecodeCmd    `cmd:"" help:"Decode a grammar and project it to JSON"`
	Info      InfoCmd      `cmd:"" help:"Show grammar name, languages, and fingerprint"`
	Languages LanguagesCmd `cmd:"" help:"List the grammar's languages"`
	Parse     ParseCmd     `cmd:"" help:"Parse a sentence into abstract syntax trees"`
	Linearize LinearizeCmd `cmd:"" help:"Linearize a tree expression into text"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// loadGrammar reads and decodes a grammar file, logging any recovered
// block diagnostics under the invocation's run id.
func loadGrammar(ctx context.Context, path string) (*pgf.Grammar, error) {
	logging.DebugContext(ctx, "decoding grammar", "path", path)
	g, diags, err := pgf.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	for _, d := range diags {
		logging.Diagnostic(ctx, d.Block, d.Language, d.Offset, d.Err)
	}
	logging.DebugContext(ctx, "grammar decoded",
		"name", g.Name, "languages", len(g.Languages()), "diagnostics", len(diags))
	return g, nil
}

// DecodeCmd decodes a grammar file and writes the JSON projection.
type DecodeCmd struct {
	Path string `arg:"" help:"Path to grammar file" type:"existingfile"`
	Out  string `help:"Output path (default: stdout)" type:"path"`
}

func (c *DecodeCmd) Run(ctx context.Context) error {
	g, err := loadGrammar(ctx, c.Path)
	if err != nil {
		return err
	}
	out, err := jsonout.Project(g)
	if err != nil {
		return fmt.Errorf("failed to project grammar: %w", err)
	}
	if c.Out == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(c.Out, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	return nil
}

// InfoCmd prints grammar metadata.
type InfoCmd struct {
	Path string `arg:"" help:"Path to grammar file" type:"existingfile"`
}

func (c *InfoCmd) Run(ctx context.Context) error {
	g, err := loadGrammar(ctx, c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("name:        %s\n", g.Name)
	fmt.Printf("format:      %s\n", g.Profile)
	fmt.Printf("startcat:    %s\n", g.Start)
	fmt.Printf("categories:  %d\n", len(g.Categories))
	fmt.Printf("functions:   %d\n", g.Functions.Len())
	fmt.Printf("fingerprint: %s\n", g.Fingerprint())
	fmt.Printf("languages:\n")
	for _, lang := range g.Languages() {
		cnc, _ := g.Concretes.Get(lang)
		if code, ok := cnc.LanguageCode(); ok {
			fmt.Printf("  %s (%s)\n", lang, code)
		} else {
			fmt.Printf("  %s\n", lang)
		}
	}
	return nil
}

// LanguagesCmd lists language names, one per line.
type LanguagesCmd struct {
	Path string `arg:"" help:"Path to grammar file" type:"existingfile"`
}

func (c *LanguagesCmd) Run(ctx context.Context) error {
	g, err := loadGrammar(ctx, c.Path)
	if err != nil {
		return err
	}
	for _, lang := range g.Languages() {
		fmt.Println(lang)
	}
	return nil
}

// ParseCmd parses a sentence and prints each derivation.
type ParseCmd struct {
	Path     string `arg:"" help:"Path to grammar file" type:"existingfile"`
	Sentence string `arg:"" help:"Sentence to parse"`
	Lang     string `required:"" help:"Target language"`
	Cat      string `help:"Start category (default: the grammar's)"`
	Brackets bool   `help:"Also print the bracketed form"`
}

func (c *ParseCmd) Run(ctx context.Context) error {
	g, err := loadGrammar(ctx, c.Path)
	if err != nil {
		return err
	}
	trees, err := chart.ParseSentence(g, c.Lang, c.Cat, c.Sentence, nil)
	if err != nil {
		return err
	}
	if len(trees) == 0 {
		fmt.Println("no derivation")
		return nil
	}
	for _, t := range trees {
		fmt.Println(t)
	}
	if c.Brackets {
		cat := c.Cat
		if cat == "" {
			cat = g.Start
		}
		fmt.Println(chart.BracketTrees(cat, trees))
	}
	return nil
}

// LinearizeCmd linearizes a tree expression.
type LinearizeCmd struct {
	Path string `arg:"" help:"Path to grammar file" type:"existingfile"`
	Tree string `arg:"" help:"Tree expression, e.g. '(Pred (This Pizza) Delicious)'"`
	Lang string `required:"" help:"Target language"`
}

func (c *LinearizeCmd) Run(ctx context.Context) error {
	g, err := loadGrammar(ctx, c.Path)
	if err != nil {
		return err
	}
	t, err := expr.Parse(c.Tree)
	if err != nil {
		return fmt.Errorf("failed to parse tree expression: %w", err)
	}
	if err := expr.TypeCheck(g, t, ""); err != nil {
		return err
	}
	text, err := linearize.Linearize(g, c.Lang, t)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("lingonberry %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lingonberry"),
		kong.Description("Portable Grammar Format decoder, parser, and linearizer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := logging.LevelWarn
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.LogJSON {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	// One run id per invocation; every context logging call carries it.
	runCtx := logging.WithRunID(context.Background(), logging.NewRunID())
	ctx.BindTo(runCtx, (*context.Context)(nil))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
