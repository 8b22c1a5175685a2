package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/siren-cli/internal/config"
)

// requireSharedCache rejects the memory driver, whose store lives and dies
// with a single invocation.
func requireSharedCache(c *config.Config) error {
	if c.Cache.Driver == "" || c.Cache.Driver == "memory" {
		return eris.New("cache: the memory driver is not shared between invocations; set cache.driver to sqlite or postgres (SIREN_CACHE_DRIVER)")
	}
	return nil
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the company record cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached company record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSharedCache(cfg); err != nil {
			return err
		}
		env, err := initEnv(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Service.ClearCache(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache vidé avec succès. %d entrée(s) supprimée(s).\n", n)
		return nil
	},
}

var cacheCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of live cached records",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSharedCache(cfg); err != nil {
			return err
		}
		env, err := initEnv(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Service.CacheSize(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <siret>",
	Short: "Remove the cached record for one SIRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSharedCache(cfg); err != nil {
			return err
		}
		env, err := initEnv(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Service.Invalidate(cmd.Context(), args[0]); err != nil {
			return userError(err)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheCountCmd, cacheDeleteCmd)
	rootCmd.AddCommand(cacheCmd)
}
