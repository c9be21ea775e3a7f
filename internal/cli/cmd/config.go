package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/infrastructure/config"
)

var (
	configForce       bool
	configSchemaWrite bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show the effective configuration, locate the config file, or print its JSON schema.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration webbridge runs with: the config file merged with
defaults and WEBBRIDGE_* environment overrides.`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runConfigPath,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Long: `Print the JSON schema describing config.toml, for editor completion and validation.

With --write the schema is stored next to the config file instead.`,
	RunE: runConfigSchema,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with all defaults",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configSchemaCmd, configInitCmd)
	configSchemaCmd.Flags().BoolVarP(&configSchemaWrite, "write", "w", false, "write the schema next to the config file")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	if app.ConfigErr != nil {
		fmt.Fprintln(os.Stderr, renderer.RenderError(app.ConfigErr))
	}

	data, err := config.EncodeTOML(app.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	fmt.Println(app.Manager.ConfigFile())
	return nil
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	if configSchemaWrite {
		path, err := config.WriteSchemaFile(app.Manager.ConfigDir())
		if err != nil {
			return err
		}
		fmt.Println(styles.NewConfigRenderer(app.Theme).RenderWritten("schema", path))
		return nil
	}

	data, err := config.MarshalSchema()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	path := app.Manager.ConfigFile()
	if _, statErr := os.Stat(path); statErr == nil && !configForce {
		fmt.Println(renderer.RenderExists(path))
		return nil
	}

	if err := config.WriteConfigOrdered(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Println(renderer.RenderWritten("default config", path))
	return nil
}
