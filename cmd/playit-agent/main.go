package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/rooootdev/playit-ios/internal/cliconfig"
	"github.com/rooootdev/playit-ios/pkg/agent"
	"github.com/rooootdev/playit-ios/pkg/conn"
	logpkg "github.com/rooootdev/playit-ios/pkg/log"
)

const helpDescription = `
Keep a playit.gg tunnel alive: authenticate with your agent key, hold the
assigned public address, and reconnect automatically on network failures.

Highlights:
  - Retries transient failures indefinitely with a fixed poll cadence.
  - Configure via file ($HOME/.playit/config.toml), env (PLAYIT_*), or flags.
  - Optionally restarts itself when the config file changes.

Get an agent key at https://playit.gg/account/agents
`

var exampleUsage = strings.TrimSpace(`
  playit-agent --secret-key <agent-key>
  playit-agent --config $HOME/.playit/config.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// supervisor owns the running agent so the config watcher can swap it.
type supervisor struct {
	mu      sync.Mutex
	current *agent.Agent
}

func (s *supervisor) get() *agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *supervisor) swap(a *agent.Agent) *agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current
	s.current = a
	return old
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "playit-agent",
		Short:   "Keep a playit.gg tunnel alive from your own machine",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadConfig := func() (cliconfig.Config, error) {
				c := cfg
				if cfgFile != "" && cliconfig.FileExists(cfgFile) {
					fc, err := cliconfig.LoadFileConfig(cfgFile)
					if err != nil {
						return c, fmt.Errorf("load config: %w", err)
					}
					if err := cliconfig.ApplyFileConfig(&c, fc, changed); err != nil {
						return c, err
					}
				}
				if err := cliconfig.ApplyEnvConfig(&c, changed); err != nil {
					return c, err
				}
				return c, c.Validate()
			}

			loaded, err := loadConfig()
			if err != nil {
				return err
			}

			logCfg := loaded
			if len(logCfg.SecretKey) > 0 {
				logCfg.SecretKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			adapter := logpkg.NewZerologAdapterWithLogger(log)

			newAgent := func(c cliconfig.Config) (*agent.Agent, error) {
				return agent.New(c.AgentConfig(), agent.WithLogger(adapter))
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sup := &supervisor{}
			a, err := newAgent(loaded)
			if err != nil {
				return fmt.Errorf("create agent: %w", err)
			}
			sup.swap(a)

			if err := a.Start(ctx); err != nil {
				return fmt.Errorf("start agent: %w", err)
			}

			// Restart with a freshly loaded config when the file changes.
			if loaded.WatchConfig && cfgFile != "" {
				watcher := cliconfig.NewWatcher(cfgFile, cliconfig.DefaultDebounce, log, func() {
					next, err := loadConfig()
					if err != nil {
						log.Error().Err(err).Msg("config reload rejected, keeping current agent")
						return
					}
					replacement, err := newAgent(next)
					if err != nil {
						log.Error().Err(err).Msg("config reload rejected, keeping current agent")
						return
					}
					if old := sup.swap(replacement); old != nil {
						if err := old.Stop(); err != nil {
							log.Error().Err(err).Msg("failed to stop previous agent")
						}
					}
					if err := replacement.Start(ctx); err != nil {
						log.Error().Err(err).Msg("failed to start reloaded agent")
						return
					}
					log.Info().Msg("agent restarted with new configuration")
				})
				if err := watcher.Start(ctx); err != nil {
					log.Error().Err(err).Msg("config watcher disabled")
				} else {
					defer watcher.Stop()
				}
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			// Watch for the run parking in the Error state, which needs
			// operator intervention (a bad agent key is never retried).
			failedCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if sup.get().Status().Code == conn.StateError {
							close(failedCh)
							return
						}
					}
				}
			}()

			var runErr error
			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-failedCh:
				snap := sup.get().Status()
				runErr = fmt.Errorf("agent failed: %s", snap.LastError)
			}

			if err := sup.get().Stop(); err != nil {
				return fmt.Errorf("stop agent: %w", err)
			}
			return runErr
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.playit/config.toml)")
	root.Flags().StringVar(&cfg.SecretKey, "secret-key", cfg.SecretKey, "playit agent key for authentication")
	root.Flags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "base API URL (override only for internal testing)")
	if err := root.Flags().MarkHidden("api-url"); err != nil {
		log.Info().Err(err).Msg("failed to hide api-url flag")
	}
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "health poll and reconnect interval")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout for API calls")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "restart the agent when the config file changes")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("playit-agent")
		os.Exit(1)
	}
}
