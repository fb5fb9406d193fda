package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/teamcutter/keeper/internal/cache"
	"github.com/teamcutter/keeper/internal/domain"
)

func newCacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage downloaded archives",
	}
	cmd.AddCommand(newCacheClearCmd(g), newCacheSizeCmd(g))
	return cmd
}

func newCacheClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every downloaded archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cache.New(g.cfg.CacheDir)
			if err != nil {
				return err
			}
			return clearCache(cmd.OutOrStdout(), c, c.Dir(), g.dryRun)
		},
	}
}

func clearCache(w io.Writer, c domain.Cache, dir string, dryRun bool) error {
	size, err := c.Size()
	if err != nil {
		return fmt.Errorf("failed to measure cache: %w", err)
	}

	if dryRun {
		fmt.Fprintf(w, "%s Would free %s from %s\n", yellow("~"), formatSize(size), dir)
		return nil
	}

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintf(w, "%s Cache cleared (%s freed)\n", green("✓"), formatSize(size))
	return nil
}

func newCacheSizeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show how much space downloaded archives use",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cache.New(g.cfg.CacheDir)
			if err != nil {
				return err
			}

			size, err := c.Size()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatSize(size), dim(c.Dir()))
			return nil
		},
	}
}
