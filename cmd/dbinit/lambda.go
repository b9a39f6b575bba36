package main

import (
	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve CloudFormation custom resource events",
	Long: `Runs under the AWS Lambda runtime. Create and Update events provision
the databases, Delete events are acknowledged without changes. The outcome
is reported back to CloudFormation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHandler(cmd.Context())
		if err != nil {
			return err
		}
		lambda.Start(cfn.LambdaWrap(h.Handle))
		return nil
	},
}
