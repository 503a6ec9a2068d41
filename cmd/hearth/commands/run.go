package commands

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/controller"
	"github.com/dyluth/hearth/internal/operator"
	"github.com/dyluth/hearth/internal/printer"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Run the heating controller simulation with a console operator.

Commands are read from standard input, one per line:
  a           switch to automatic mode
  m           switch to manual mode
  p <0..100>  set the manual power
  q           quit (end of input also quits)

Every parameter can be set in the --config file or overridden with a flag.`,
		Args: cobra.NoArgs,
		RunE: runSimulation,
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	console := printer.NewConsole(cmd.OutOrStdout())
	engine, err := controller.New(*cfg, clock.RealClock{}, console)
	if err != nil {
		return printer.Error(
			"failed to start controller",
			err.Error(),
			nil,
		)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Set up signal handling for SIGINT and SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("[INFO] Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// The operator blocks on input and is left behind at exit
	op := operator.New(engine.Events(), cancel, console)
	go op.Run(ctx, cmd.InOrStdin())

	err = engine.Run(ctx)
	switch {
	case errors.Is(err, controller.ErrGraceExpired):
		printer.Warning("%v\n", err)
	case err != nil:
		return printer.Error(
			"controller stopped with an error",
			err.Error(),
			[]string{"Run again with --verbose for task-level logs"},
		)
	}

	printer.Success("Shutdown complete\n")
	return nil
}
