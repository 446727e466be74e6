package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
)

// FormatInstallResult renders one install outcome.
func (f *Formatter) FormatInstallResult(res *install.Result) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(res, "", "  ")
		return string(data)
	}

	if res.AlreadyInstalled {
		return fmt.Sprintf("%s is already installed (no-op)", res.Tool)
	}
	return fmt.Sprintf("installed %s: %d file(s) in %v", res.Tool, len(res.Files), res.Duration.Round(time.Millisecond))
}

// FormatVerifyReport renders a verification report, coloring the terminal
// states so a scan of many tools reads at a glance.
func (f *Formatter) FormatVerifyReport(rep *verify.Report) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(rep, "", "  ")
		return string(data)
	}

	var sb strings.Builder
	status := string(rep.Status)
	if f.color {
		switch rep.Status {
		case verify.StatusVerified:
			status = color.GreenString(status)
		case verify.StatusFailed:
			status = color.RedString(status)
		}
	}
	fmt.Fprintf(&sb, "%s: %s", rep.Tool, status)

	if rep.Status == verify.StatusFailed {
		fmt.Fprintf(&sb, " (%s)", rep.Failure)
		if rep.Reason != "" {
			fmt.Fprintf(&sb, "\n  reason: %s", rep.Reason)
		}
		sb.WriteString("\n  the tool remains installed; fix the prerequisite and run 'hivectl verify' again")
	}
	if rep.SchemaWarning != "" {
		fmt.Fprintf(&sb, "\n  schema: %s", rep.SchemaWarning)
	}
	if rep.HandshakeLatency > 0 {
		fmt.Fprintf(&sb, "\n  handshake: %v", rep.HandshakeLatency.Round(time.Millisecond))
	}
	return sb.String()
}
