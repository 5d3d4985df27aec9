package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	t.Run("version command structure", func(t *testing.T) {
		if versionCmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %s", versionCmd.Use)
		}

		if versionCmd.Short != "Show version information" {
			t.Errorf("unexpected Short: %s", versionCmd.Short)
		}
	})

	t.Run("version command execution", func(t *testing.T) {
		var out bytes.Buffer
		versionCmd.SetOut(&out)
		defer versionCmd.SetOut(nil)

		versionCmd.Run(versionCmd, []string{})

		if !strings.Contains(out.String(), "Inventory") {
			t.Errorf("expected version output to mention Inventory, got %q", out.String())
		}
	})
}
