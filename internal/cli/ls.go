package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/view"
)

func newLsCmd() *cobra.Command {
	var (
		search string
		folder string
		long   bool
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Sign in and list a folder",
		Long: `Sign in with the saved connection record, list one folder and exit.

Examples:
  orbit ls
  orbit ls --search report
  orbit ls --folder 2 -l`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			log := GetLogger()
			out := cmd.OutOrStdout()

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			defer bus.Close()

			engine, _, err := newEngine(ctx, GetAppConfig(), bus, log)
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.Login(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if res.Advisory != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Advisory)
			}

			if folder != "" && folder != constants.RootFolderID {
				if err := engine.Open(ctx, folder); err != nil {
					return err
				}
			}
			if search != "" {
				if err := engine.Search(search); err != nil {
					return err
				}
			}
			if long {
				if err := engine.SetViewMode(view.ModeList); err != nil {
					return err
				}
			}

			renderPage(out, engine.Page())
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show entries whose name contains this text")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id to open before listing")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "List layout with ids and dates")
	return cmd
}
