package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/classguard/bytecode"
	"github.com/dhamidi/classguard/classfile"
	"github.com/dhamidi/classguard/config"
	"github.com/dhamidi/classguard/strip"
	"github.com/spf13/cobra"
)

func newStripCmd() *cobra.Command {
	var output string
	var vm string

	cmd := &cobra.Command{
		Use:   "strip <in.class>",
		Short: "Remove attributes that reference the constant pool illegally",
		Long: `Strip parses a class file, drops every attribute whose pool references or
placement are illegal, rewrites VM-internal opcodes to standard ones and
writes the result. Settings are read from the nearest classguard.toml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			cfg, err := config.FindAndLoad(filepath.Dir(input))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			profile := cfg.Profile()
			if vm != "" {
				if profile, err = bytecode.LookupProfile(vm); err != nil {
					return err
				}
			}
			if output == "" {
				output = cfg.OutputPath(input)
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read class file: %w", err)
			}
			cf, err := classfile.ParseBytes(data)
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, describeBytes("in", data))
			if cfg.Strip.Enabled {
				report := strip.Strip(cf, strip.WithProfile(profile))
				for _, d := range report.Dropped {
					fmt.Fprintf(out, "dropped\t%s\n", d)
				}
				for _, index := range report.Filled {
					fmt.Fprintf(out, "filled\t#%d\n", index)
				}
				if report.BootstrapMethodsRemoved {
					fmt.Fprintln(out, "removed\tBootstrapMethods")
				}
				if report.Rewrites > 0 {
					fmt.Fprintf(out, "rewrote\t%d reserved opcodes\n", report.Rewrites)
				}
			}

			stripped, err := cf.Bytes()
			if err != nil {
				return fmt.Errorf("write class file: %w", err)
			}
			if err := os.WriteFile(output, stripped, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintln(out, describeBytes("out", stripped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: input path plus the configured suffix)")
	cmd.Flags().StringVar(&vm, "vm", "", "VM profile for reserved opcodes (hotspot8, hotspot11)")

	return cmd
}
