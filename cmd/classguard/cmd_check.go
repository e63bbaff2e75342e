package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dhamidi/classguard/classfile"
	"github.com/dhamidi/classguard/config"
	"github.com/dhamidi/classguard/strip"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.class>...",
		Short: "Verify that class files round-trip and report what strip would change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FindAndLoad(".")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				status, err := checkFile(path, cfg)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL\t%s\t%s\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", status, path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	return cmd
}

// checkFile returns "ok" for a class that round-trips and needs no
// stripping, "dirty" for one that round-trips but would be stripped.
func checkFile(path string, cfg *config.Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return "", err
	}
	written, err := cf.Bytes()
	if err != nil {
		return "", err
	}
	if !bytes.Equal(written, data) {
		return "", fmt.Errorf("round trip changed %s to %s", digest(data), digest(written))
	}

	report := strip.Strip(cf, strip.WithProfile(cfg.Profile()))
	if report.Changed() {
		return fmt.Sprintf("dirty (%d dropped, %d rewrites)", len(report.Dropped), report.Rewrites), nil
	}
	return "ok", nil
}
