package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

func benchCmd() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "measure encode throughput for a file against an encoding",
		Flags: append(commonEncodingFlags(),
			&cli.StringFlag{Name: "file", Usage: "input file path", Required: true},
			&cli.IntFlag{Name: "iterations", Usage: "repeat count", Value: 5},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			enc, err := resolveEncoding(ctx, cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(cmd.String("file"))
			if err != nil {
				return err
			}
			text := string(data)
			policy := policyFromFlags(cmd)
			iterations := int(cmd.Int("iterations"))
			if iterations < 1 {
				iterations = 1
			}

			var total int
			start := time.Now()
			for i := 0; i < iterations; i++ {
				tokens, err := enc.Encode(text, policy)
				if err != nil {
					return err
				}
				total += len(tokens)
			}
			elapsed := time.Since(start)

			bytesPerIter := len(data)
			fmt.Printf("encoding=%s iterations=%d bytes/iter=%d tokens/iter=%d elapsed=%s throughput=%.2f MB/s\n",
				enc.Name(), iterations, bytesPerIter, total/iterations, elapsed,
				float64(bytesPerIter*iterations)/elapsed.Seconds()/(1<<20))
			return nil
		},
	}
}
