package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/pkgsearch/internal/config"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

func explainCommand(c *cli.Context) error {
	raw := strings.Join(c.Args().Slice(), " ")
	if raw == "" {
		return fmt.Errorf("query argument is required")
	}

	search := config.SearchConfig{}
	if cfg, err := config.Load(c.String("env")); err == nil {
		search = cfg.Search
	}
	opts, err := compilerOptions(search)
	if err != nil {
		return err
	}
	compiler := request.NewCompiler(opts)

	if c.Bool("text-only") {
		_, err := fmt.Fprintln(c.App.Writer, compiler.DiscardQualifiers(raw))
		return err
	}

	var q request.Query
	if c.Bool("suggestions") {
		q, err = compiler.CompileSuggestions(raw, optionalInt(c, "size"))
	} else {
		q, err = compiler.Compile(raw, params.Pagination{From: optionalInt(c, "from"), Size: optionalInt(c, "size")})
	}
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(q.Explain())
}

func optionalInt(c *cli.Context, name string) *int {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int(name)
	return &v
}
