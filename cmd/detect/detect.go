// Package detect reports which format and handler a statement resolves to
package detect

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/root"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect [file...]",
	Short: "Show the detected format and institution of statements",
	Args:  cobra.ArbitraryArgs,
	RunE:  detectFunc,
}

func detectFunc(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 && root.SharedFlags.Input != "" {
		files = []string{root.SharedFlags.Input}
	}
	if len(files) == 0 {
		return errors.New("at least one file is required")
	}

	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}

	var failed int
	for _, file := range files {
		if err := detectOne(cmd, c.GetManager(), file); err != nil {
			failed++
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", file, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be resolved", failed, len(files))
	}
	return nil
}

func detectOne(cmd *cobra.Command, m *registry.Manager, file string) error {
	src, f, err := registry.OpenSource(file)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	format, h, err := m.Resolve(src)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: format=%s handler=%s\n", file, format, h.Name())
	return nil
}
