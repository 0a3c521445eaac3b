package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/hashd/internal/cliconfig"
	"github.com/bft-labs/hashd/pkg/hashd"
	"github.com/bft-labs/hashd/pkg/log"
	"github.com/bft-labs/hashd/plugins/configwatcher"
)

const helpDescription = `
hashd answers file digests over TCP.

A client names an algorithm (sha1, sha256, sha512, md5), declares how many
files follow and sends each as a length-prefixed payload. hashd replies with
one lowercase hex digest per file. Clients are served one at a time.

Configure via $HOME/.hashd/config.toml, HASHD_* environment variables or
flags; flags win over the environment, which wins over the file.
`

var exampleUsage = strings.TrimSpace(`
  hashd --port 2345 --read-timeout 30s
  hashd --config /etc/hashd/config.toml --watch-config --log-format json
  hashd digest --algo sha512 ./release.tar.gz
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	boot, _ := cliconfig.NewLogger(os.Stderr, cliconfig.DefaultConfig())

	root := newRootCommand(&boot)
	root.AddCommand(newDigestCommand())

	if err := root.Execute(); err != nil {
		boot.Error().Err(err).Msg("hashd")
		os.Exit(1)
	}
}

func newRootCommand(logger *zerolog.Logger) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "hashd",
		Short:         "Serve file digests over TCP",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Flags explicitly set on the command line win over file and env.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			flagCfg := cfg
			loaded, err := cliconfig.Load(flagCfg, cfgFile, changed)
			if err != nil {
				return err
			}

			zl, err := cliconfig.NewLogger(os.Stderr, loaded)
			if err != nil {
				return err
			}
			*logger = zl
			zl.Info().Interface("config", loaded).Str("config_file", cfgFile).Msg("configuration")

			opts := []hashd.Option{
				hashd.WithLogger(log.NewZerologAdapterWithLogger(zl)),
			}
			if loaded.WatchConfig {
				opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
					Path: cfgFile,
					Loader: func() (hashd.Config, error) {
						c, err := cliconfig.Load(flagCfg, cfgFile, changed)
						return c.ToServerConfig(), err
					},
				}))
			}

			srv, err := hashd.New(loaded.ToServerConfig(), opts...)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			return serve(srv, zl)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.hashd/config.toml)")
	root.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "listening port")
	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "bind host (default all interfaces)")
	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-read idle timeout (0 = none)")
	root.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "per-write timeout (0 = none)")
	root.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "max bytes per socket read")
	root.Flags().BoolVar(&cfg.ExtendedAlgorithms, "extended-algorithms", cfg.ExtendedAlgorithms, "also accept blake2b and blake3")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console|json")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload settings when the config file changes")

	return root
}

// serve runs srv until SIGINT/SIGTERM or until it crashes.
func serve(srv *hashd.Server, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	doneCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if srv.Status() == hashd.StateCrashed {
					close(doneCh)
					return
				}
			}
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Stringer("signal", sig).Msg("received signal, stopping...")
	case <-doneCh:
		return fmt.Errorf("server crashed")
	}

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	return nil
}
