package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName    = "pptrmcp"
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Browser automation MCP server",
	Long: `pptrmcp exposes a headless browser to MCP clients:
  - launch or attach to Chromium, open pages under your own ids
  - navigate, click, type, read text, evaluate scripts, take screenshots
  - manage cookies and intercept requests

Drives Chromium over the DevTools protocol (chromedp) or through playwright.`,
	Version: appVersion,
	// Default behavior: if stdin is not a terminal, run as MCP server
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return runServe(cmd, args)
		}
		return cmd.Help()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/pptrmcp/config.kdl)")
	rootCmd.PersistentFlags().String("engine", "", "Browser engine: cdp or playwright")
	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.SetVersionTemplate(fmt.Sprintf("%s v%s\n", appName, appVersion))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
