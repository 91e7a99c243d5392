package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/corebpe/tiktoken"
)

func commonEncodingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "encoding", Usage: "named encoding (e.g. cl100k_base)", Value: "cl100k_base"},
		&cli.StringFlag{Name: "model", Usage: "resolve encoding from a model name instead of --encoding"},
		&cli.StringSliceFlag{Name: "allow-special", Usage: "special-token literals to allow (default: none)"},
		&cli.BoolFlag{Name: "allow-all-special", Usage: "allow every registered special token"},
	}
}

func resolveEncoding(ctx context.Context, cmd *cli.Command) (*tiktoken.Encoding, error) {
	if model := cmd.String("model"); model != "" {
		return tiktoken.EncodingForModel(ctx, model)
	}
	return tiktoken.GetEncoding(ctx, cmd.String("encoding"))
}

func policyFromFlags(cmd *cli.Command) tiktoken.SpecialTokenPolicy {
	if cmd.Bool("allow-all-special") {
		return tiktoken.AllowAll()
	}
	if allowed := cmd.StringSlice("allow-special"); len(allowed) > 0 {
		return tiktoken.AllowOnly(allowed...)
	}
	return tiktoken.AllowNone()
}

func readInput(cmd *cli.Command) (string, error) {
	if text := cmd.String("text"); text != "" {
		return text, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func encodeCmd() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "encode text to token ids",
		Flags: append(commonEncodingFlags(),
			&cli.StringFlag{Name: "text", Usage: "text to encode (default: read stdin)"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			enc, err := resolveEncoding(ctx, cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd)
			if err != nil {
				return err
			}
			tokens, err := enc.Encode(text, policyFromFlags(cmd))
			if err != nil {
				return err
			}
			strs := make([]string, len(tokens))
			for i, t := range tokens {
				strs[i] = strconv.FormatUint(uint64(t), 10)
			}
			fmt.Println(strings.Join(strs, " "))
			return nil
		},
	}
}
