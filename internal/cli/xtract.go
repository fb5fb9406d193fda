package cli

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/teamcutter/keeper/internal/dispatcher"
	"github.com/teamcutter/keeper/internal/domain"
	"golang.org/x/sync/errgroup"
)

func newXtractCmd(g *globalFlags) *cobra.Command {
	var output, sha256 string
	var list bool

	cmd := &cobra.Command{
		Use:     "xtract <archive>...",
		Aliases: []string{"x", "extract"},
		Short:   "Extract archives (local paths or http(s) URLs)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sha256 != "" && len(args) > 1 {
				return errors.New("--sha256 applies to a single archive")
			}

			var remote []string
			for _, arg := range args {
				if dispatcher.IsRemote(arg) {
					remote = append(remote, arg)
				}
			}

			a, err := newApp(g, len(remote) > 0)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			hint := output
			if hint == "" {
				hint = a.cfg.DefaultDestination
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			mu := &sync.Mutex{}
			failed := make(map[string]error)

			if len(remote) > 0 {
				fg, fctx := errgroup.WithContext(ctx)
				fg.SetLimit(min(len(remote), a.cfg.MaxParallel))

				for _, url := range remote {
					fg.Go(func() error {
						if _, err := a.dispatcher.Fetch(fctx, url, sha256); err != nil {
							mu.Lock()
							failed[url] = err
							mu.Unlock()
						}
						return nil
					})
				}
				_ = fg.Wait()
			}

			var errs []error
			for _, arg := range args {
				if err, ok := failed[arg]; ok {
					errs = append(errs, err)
					fmt.Fprintf(w, "%s %s\n", red("✗"), err)
					continue
				}

				req := domain.Request{
					ArchivePath:     arg,
					DestinationHint: hint,
					DryRun:          g.dryRun,
					ListOnly:        list,
					SHA256:          sha256,
				}

				stop := func() {}
				if !g.quiet {
					stop = withSpinner(ctx, fmt.Sprintf("Extracting %s...", arg))
				}
				out, err := a.dispatcher.Extract(ctx, req)
				stop()

				if err != nil {
					errs = append(errs, err)
					fmt.Fprintf(w, "%s %s\n", red("✗"), err)
					continue
				}
				printOutcome(w, out, g.quiet)
			}

			if len(errs) > 0 {
				return fmt.Errorf("failed to extract %d archive(s): %w", len(errs), errors.Join(errs...))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination directory (default from config)")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List entries without extracting")
	cmd.Flags().StringVar(&sha256, "sha256", "", "Expected SHA256 checksum of a remote archive")
	return cmd
}
