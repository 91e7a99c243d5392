package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/corebpe/tiktoken"
)

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "decode whitespace-separated token ids to text",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "encoding", Usage: "named encoding (e.g. cl100k_base)", Value: "cl100k_base"},
			&cli.StringFlag{Name: "model", Usage: "resolve encoding from a model name instead of --encoding"},
			&cli.StringFlag{Name: "tokens", Usage: "whitespace-separated token ids", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var enc *tiktoken.Encoding
			var err error
			if model := cmd.String("model"); model != "" {
				enc, err = tiktoken.EncodingForModel(ctx, model)
			} else {
				enc, err = tiktoken.GetEncoding(ctx, cmd.String("encoding"))
			}
			if err != nil {
				return err
			}
			fields := strings.Fields(cmd.String("tokens"))
			tokens := make([]tiktoken.Rank, 0, len(fields))
			for _, f := range fields {
				n, perr := strconv.ParseUint(f, 10, 32)
				if perr != nil {
					return fmt.Errorf("invalid token id %q: %w", f, perr)
				}
				tokens = append(tokens, tiktoken.Rank(n))
			}
			fmt.Println(enc.Decode(tokens))
			return nil
		},
	}
}
