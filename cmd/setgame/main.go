package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arl/statsviz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/or-Ben-Tzur/SetGame/engine"
	"github.com/or-Ben-Tzur/SetGame/internal/config"
	"github.com/or-Ben-Tzur/SetGame/internal/game"
	"github.com/or-Ben-Tzur/SetGame/internal/ui"
)

var statsvizAddr string

var rootCmd = &cobra.Command{
	Use:          "setgame",
	Short:        "Concurrent pattern-matching card game simulation",
	Long:         "Runs a dealer and a table of players (automated unless configured otherwise) until no legal match remains or the process is interrupted. Configuration is environment-driven; see internal/config.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}

		if statsvizAddr != "" {
			mux := http.NewServeMux()
			if err := statsviz.Register(mux); err != nil {
				return err
			}
			go func() {
				logger.WithField("addr", statsvizAddr).Info("statsviz listening")
				if err := http.ListenAndServe(statsvizAddr, mux); err != nil {
					logger.WithError(err).Warn("statsviz server stopped")
				}
			}()
		}

		oracle := engine.NewRules(uint8(cfg.Features), uint8(cfg.MatchSize))
		dealer, err := game.NewDealer(cfg, oracle, ui.NewLogUI(logger), logger)
		if err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			logger.Info("termination requested")
			dealer.Terminate()
		}()

		dealer.Run()
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVar(&statsvizAddr, "statsviz", "", "serve runtime metrics for statsviz on this address (e.g. :8080)")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
