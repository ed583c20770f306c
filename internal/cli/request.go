package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRequestCmd(ra *rootArgs) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a raw request and print the response body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				body = json.RawMessage(data)
			}

			var raw []byte
			method := strings.ToUpper(args[0])
			if err := ra.app.API().Do(cmd.Context(), method, args[1], body, &raw, nil); err != nil {
				return err
			}
			if len(raw) > 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(raw)))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	return cmd
}
