// Package cmd provides Cobra CLI commands for webbridge.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/cli"
	"github.com/bnema/webbridge/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "webbridge",
		Short: "Bridge host functions into a scriptable content engine",
		Long: `webbridge hosts a content engine and exposes Go functions to the scripts it runs.

Scripts call bound host functions synchronously or asynchronously through the
injected client (webbridge.invoke, webbridge.invokeSync), receive pushed
messages and observe cookie and navigation events.

Use 'webbridge run <script.js>' to run a script against the demo bindings, or
explore the subcommands to inspect the configuration, the call journal and
past host runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
	}
)

// ExitCodeError carries the exit code a script asked for.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("script exited with code %d", e.Code)
}

// Execute runs the root command and exits the process on failure.
func Execute() {
	err := rootCmd.Execute()
	if app != nil {
		if closeErr := app.Close(); closeErr != nil {
			fmt.Fprintln(os.Stderr, closeErr)
		}
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

func requireApp() (*cli.App, error) {
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}
