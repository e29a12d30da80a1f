package main

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-oidc-bff/internal/config"
	"github.com/spf13/cobra"
)

// portOverride replaces PORT with the --port flag.
type portOverride struct {
	config.Config
	port string
}

func (p portOverride) GetPort() string {
	if strings.HasPrefix(p.port, ":") {
		return p.port
	}
	return ":" + p.port
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:          "oidc-bff",
		Short:        "Backend-for-frontend gateway that keeps OIDC tokens out of the browser",
		Version:      version,
		SilenceUsage: true,
		// serve is the default command
		RunE: serve.RunE,
		Args: cobra.NoArgs,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c config.Config = config.New()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				c = portOverride{Config: c, port: port}
			}
			return run(c)
		},
	}
	cmd.Flags().String("port", "", "listen port, overrides PORT")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oidc-bff version %s\n", version)
		},
	}
}
