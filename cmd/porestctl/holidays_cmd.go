package main

import (
	"github.com/spf13/cobra"

	"porest/backend/internal/dto"
)

func newHolidaysCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "节假日管理",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "触发服务端 ICS 节假日同步",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			var res dto.HolidaySyncResponse
			if err := client.Post(cmd.Context(), "/holidays/sync", nil, &res); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	})
	return cmd
}
