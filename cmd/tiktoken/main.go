// Command tiktoken is the CLI entry point: encode, decode, count tokens,
// serve the HTTP facade, or run a throughput benchmark. Structured after
// samcharles93-mantle/cmd/mantle/main.go's root-command/subcommand split.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/corebpe/tiktoken"
)

// applyConfigFlag loads the --config registry seed file, if any, into the
// default registry before any subcommand runs.
func applyConfigFlag(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := tiktoken.LoadConfigFile(cmd.String("config")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

func main() {
	app := &cli.Command{
		Name:  "tiktoken",
		Usage: "BPE tokenizer for the OpenAI encoding family",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a registry.yaml seed file (extra vocabs/aliases/prefixes)"},
		},
		Before: applyConfigFlag,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			encodeCmd(),
			decodeCmd(),
			countCmd(),
			serveCmd(),
			benchCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
