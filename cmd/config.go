package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/config"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetFolderCmd())
	cmd.AddCommand(newConfigSetThemeCmd())
	cmd.AddCommand(newConfigSetCompressCmd())
	cmd.AddCommand(newConfigSetWindowCmd())
	cmd.AddCommand(newConfigOpenFolderCmd())
	return cmd
}

// saveConfig persists the in-memory config, exiting on write failure.
func saveConfig() {
	if err := state.Flush(); err != nil {
		fatal("Error saving config: %v", err)
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := state.Config
			output.PrintHeader("Settings " + state.ConfigPath)
			output.PrintKeyValue("Folder", state.MediaFolder())
			output.PrintKeyValue("Embed", strconv.FormatBool(cfg.DefaultCompress))
			output.PrintKeyValue("Theme", fmt.Sprintf("%s (%s)", cfg.Theme, output.Palettes[cfg.Theme].Name))
			output.PrintKeyValue("Window", fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight))
			if state.Overrides.MediaFolder != "" {
				output.PrintDetail(fmt.Sprintf("Media folder overridden by %s (stored: %s)", config.EnvMediaFolder, cfg.MediaFolder))
			}
		},
	}
}

func newConfigSetFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-folder [DIR]",
		Short: "Set the media folder (relative paths resolve against home)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := state.Config.SetMediaFolder(args[0]); err != nil {
				fatal("%v", err)
			}
			folder := state.Config.ResolveMediaFolder(state.Home)
			if err := utils.EnsureDir(folder); err != nil {
				fatal("Error creating %s: %v", folder, err)
			}
			saveConfig()
			output.PrintSuccess("Media folder set to " + folder)
		},
	}
}

func newConfigSetThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set-theme [THEME]",
		Short:     "Set the color theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Themes,
		Run: func(cmd *cobra.Command, args []string) {
			if err := state.Config.SetTheme(args[0]); err != nil {
				fatal("%v (choose from %v)", err, config.Themes)
			}
			saveConfig()
			output.ApplyTheme(args[0])
			output.PrintSuccess("Theme set to " + output.Palettes[args[0]].Name)
		},
	}
}

func newConfigSetCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-compress [true|false]",
		Short: "Embed metadata and thumbnails in downloads by default",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				fatal("Invalid value %q, expected true or false", args[0])
			}
			state.Config.SetDefaultCompress(enabled)
			saveConfig()
			output.PrintSuccess(fmt.Sprintf("Default embed set to %t", enabled))
		},
	}
}

func newConfigSetWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-window [WIDTH] [HEIGHT]",
		Short: "Set the stored window size",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			width, errW := strconv.Atoi(args[0])
			height, errH := strconv.Atoi(args[1])
			if errW != nil || errH != nil {
				fatal("Window size must be two integers")
			}
			if err := state.Config.SetWindowSize(width, height); err != nil {
				fatal("%v", err)
			}
			saveConfig()
			output.PrintSuccess(fmt.Sprintf("Window size set to %dx%d", width, height))
		},
	}
}

func newConfigOpenFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-folder",
		Short: "Open the media folder in the system file manager",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := utils.OpenPath(state.MediaFolder()); err != nil {
				fatal("%v", err)
			}
		},
	}
}
