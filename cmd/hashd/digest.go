package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/hashd/pkg/client"
)

func newDigestCommand() *cobra.Command {
	var (
		addr    string
		algo    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "digest [flags] FILE...",
		Short: "Send files to a hashd server and print their digests",
		Example: `  hashd digest ./a.bin ./b.bin
  hashd digest -a 10.0.0.5:2345 --algo md5 ./image.iso`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runDigest(ctx, cmd, addr, algo, timeout, args)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:2345", "server address")
	cmd.Flags().StringVar(&algo, "algo", "sha256", "hash algorithm")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "dial and I/O timeout")

	return cmd
}

func runDigest(ctx context.Context, cmd *cobra.Command, addr, algo string, timeout time.Duration, paths []string) error {
	c := client.New(addr, client.WithTimeout(timeout))

	results, err := c.HashPaths(ctx, algo, paths)
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s  %s\n", r.Digest, r.Name)
	}
	if errors.Is(err, client.ErrUnsupportedAlgorithm) {
		return fmt.Errorf("server rejected algorithm %q", algo)
	}
	return err
}
