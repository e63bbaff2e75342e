package main

import (
	"fmt"

	"github.com/dhamidi/classguard/classfile"
	"github.com/dhamidi/classguard/format"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file.class>",
		Short: "Dump the constant pool, members and attributes of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := classfile.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}

			var enc format.Encoder
			switch dumpFormat {
			case "line":
				enc = format.NewLineEncoder(cmd.OutOrStdout())
			case "json":
				enc = format.NewJSONEncoder(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format: %s (expected line or json)", dumpFormat)
			}
			if err := enc.Encode(cf); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (line, json)")

	return cmd
}
