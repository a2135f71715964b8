package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repoflat/internal/config"
	"github.com/temirov/repoflat/internal/utils"
)

const (
	configUse                   = "config"
	configShortDescription      = "manage repoflat configuration"
	configInitUse               = "init"
	configInitShortDescription  = "write the default configuration"
	configInitLongDescription   = "Write the default configuration to ./" + utils.LocalConfigFileName + ", or to ~/" + utils.GlobalConfigDirectoryName + "/" + utils.GlobalConfigFileName + " with --global."
	globalFlagName              = "global"
	forceFlagName               = "force"
	globalFlagDescription       = "write the global configuration under the home directory"
	forceFlagDescription        = "overwrite an existing configuration file"
	configurationWrittenMessage = "configuration written to %s\n"
)

// createConfigCommand returns the config subcommand and its init child.
func createConfigCommand(app *application) *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Long:  configInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenMessage, destinationPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	configCommand.AddCommand(initCommand)
	return configCommand
}
