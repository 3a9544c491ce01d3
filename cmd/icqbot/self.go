package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Show the bot's own profile",
	Long:  "Call self/get to check the token and print the bot's id and nick",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadClient()
		if err != nil {
			return err
		}

		self, err := client.GetSelf(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User ID: %s\n", self.UserID)
		fmt.Fprintf(out, "Nick:    %s\n", self.Nick)
		fmt.Fprintf(out, "Name:    %s\n", self.FirstName)
		if self.About != "" {
			fmt.Fprintf(out, "About:   %s\n", self.About)
		}
		return nil
	},
}
