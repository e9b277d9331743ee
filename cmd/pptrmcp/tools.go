package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/pptrmcp/internal/session"
	"github.com/standardbeagle/pptrmcp/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		// The catalog never touches the browser.
		s := session.New(newProvider(cfg), session.Options{ToolPrefix: cfg.ToolPrefix})
		catalog := tools.NewDispatcher(s, cfg.ToolPrefix).Catalog()
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog)
		}
		printCatalog(os.Stdout, catalog)
		return nil
	},
}

func init() {
	toolsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}

func printCatalog(w io.Writer, catalog []tools.ToolInfo) {
	for i, info := range catalog {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, info.Name)
		for _, line := range strings.Split(info.Description, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if len(info.Required) > 0 {
			fmt.Fprintf(w, "    required: %s\n", strings.Join(info.Required, ", "))
		}
		if len(info.Optional) > 0 {
			fmt.Fprintf(w, "    optional: %s\n", strings.Join(info.Optional, ", "))
		}
	}
}
