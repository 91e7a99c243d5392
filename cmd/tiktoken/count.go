package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func countCmd() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "count tokens without materializing them",
		Flags: append(commonEncodingFlags(),
			&cli.StringFlag{Name: "text", Usage: "text to count (default: read stdin)"},
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
			count, err := enc.TokenCount(text, policyFromFlags(cmd))
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
}
