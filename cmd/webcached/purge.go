package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchtech/webcache"
	"github.com/mchtech/webcache/config"
)

func newPurgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge [url]...",
		Short: "Delete one or more URLs' cache entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := openStore(cfg.KV)
			if err != nil {
				return err
			}

			handler := &webcache.Handler{Store: store}
			for _, url := range args {
				if err := handler.Purge(url); err != nil {
					return fmt.Errorf("purge %s: %w", url, err)
				}
				fmt.Println("purged", url)
			}
			return nil
		},
	}
	return cmd
}
