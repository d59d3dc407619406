package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newEscalationsCommand runs one escalation scan for an external scheduler.
// There is no internal timer; cron or a job runner decides how often.
func newEscalationsCommand(configPath *string) *cobra.Command {
	var workspaceID uint64

	cmd := &cobra.Command{
		Use:   "escalations",
		Args:  cobra.NoArgs,
		Short: "Flag submissions that have waited too long for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspaceID == 0 {
				return fmt.Errorf("--workspace is required")
			}

			rt, err := bootstrap(*configPath, false)
			if err != nil {
				return err
			}

			// No workers run here; events are dispatched as the scan produces them.
			svc := rt.newServices(rt.newBus().Inline())

			escalated, err := svc.Reviews.ScanEscalations(cmd.Context(), workspaceID)
			if err != nil {
				return err
			}

			rt.log.WithFields(logrus.Fields{
				"workspace_id": workspaceID,
				"escalated":    len(escalated),
			}).Info("escalation scan finished")
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&workspaceID, "workspace", "w", 0, "workspace to scan")

	return cmd
}
