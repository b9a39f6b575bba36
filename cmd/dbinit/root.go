package main

import (
	"context"
	"fmt"
	"os"

	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"service-mesh/internal/logging"
	"service-mesh/internal/provision"
)

var logger = loggo.GetLogger("servicemesh.dbinit")

var (
	logLevel string
	region   string
)

var rootCmd = &cobra.Command{
	Use:   "dbinit",
	Short: "Provision the users and tasks databases",
	Long: `Creates users_db and tasks_db on the cluster described by the admin
secret, and (re)creates one account per database from the service secrets.
Every statement is idempotent, so running it again is safe.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Configure(logLevel)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultRegion := os.Getenv("AWS_REGION")
	if defaultRegion == "" {
		defaultRegion = provision.DefaultRegion
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level")
	rootCmd.PersistentFlags().StringVar(&region, "region", defaultRegion, "AWS region of the secrets")

	rootCmd.AddCommand(lambdaCmd)
	rootCmd.AddCommand(applyCmd)
}

func newHandler(ctx context.Context) (*provision.Handler, error) {
	client, err := provision.NewSecretsManagerClient(ctx, region)
	if err != nil {
		return nil, err
	}
	return provision.NewHandler(provision.NewAWSSecretStore(client), provision.NewMySQLInitializer()), nil
}
