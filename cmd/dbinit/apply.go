package main

import (
	"github.com/spf13/cobra"

	"service-mesh/internal/provision"
)

var applyReq provision.Request

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run one provisioning pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHandler(cmd.Context())
		if err != nil {
			return err
		}
		if err := h.Provision(cmd.Context(), applyReq); err != nil {
			return err
		}
		logger.Infof("databases provisioned")
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyReq.AdminSecret, "db-secret", "", "secret id of the cluster admin credentials")
	applyCmd.Flags().StringVar(&applyReq.UsersSecret, "users-secret", "", "secret id of the users service account")
	applyCmd.Flags().StringVar(&applyReq.TasksSecret, "tasks-secret", "", "secret id of the tasks service account")
	for _, f := range []string{"db-secret", "users-secret", "tasks-secret"} {
		_ = applyCmd.MarkFlagRequired(f)
	}
}
