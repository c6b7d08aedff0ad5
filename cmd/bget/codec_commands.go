package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bget/internal/resource"
)

func newCodecCommands() []*cobra.Command {
	encode := &cobra.Command{
		Use:         "encode <aid>",
		Short:       "Convert an av id to its BV id",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(args[0])), "av")
			aid, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid av id %q", args[0])
			}
			bvid, err := resource.EncodeBVID(aid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bvid)
			return nil
		},
	}

	decode := &cobra.Command{
		Use:         "decode <bvid>",
		Short:       "Convert a BV id to its av id",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, err := resource.DecodeBVID(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "av%d\n", aid)
			return nil
		},
	}

	return []*cobra.Command{encode, decode}
}
