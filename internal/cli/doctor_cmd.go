package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/doctor"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/ui"
)

var (
	doctorJSON  bool
	doctorLocal bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a profile is ready to use",
	Long: `Check the config file, the profile's SSH settings and stored kinit
password, then connect and check TMP_DIR and the Hadoop, beeline and
spark-submit tools on the remote host.

Exits non-zero when any check fails.

Examples:
  issho doctor
  issho doctor -p prod --local
  issho doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

// DoctorOutput is the --json shape.
type DoctorOutput struct {
	Profile string               `json:"profile"`
	Results []doctor.CheckResult `json:"results"`
	Summary SummaryOutput        `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(cmd *cobra.Command) error {
	// A profile that doesn't load is reported by the config checks.
	p, _ := loadProfile()

	store := credentialStore
	if store == nil {
		store = credentials.NewKeyring()
	}

	ctx := cmd.Context()
	results := doctor.RunAll(ctx, doctor.NewLocalChecks(cfgFile, profileName, p, store))

	if !doctorLocal && p != nil && !doctor.HasFailures(results) {
		results = append(results, remoteResults(cmd, p)...)
	}

	out := cmd.OutOrStdout()
	if doctorJSON {
		if err := writeDoctorJSON(out, results); err != nil {
			return err
		}
	} else {
		writeDoctorText(out, results)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func remoteResults(cmd *cobra.Command, p *config.Profile) []doctor.CheckResult {
	sess, err := openSession(cmd, nil)
	connect := doctor.ConnectResult(p.Name, err)
	if err != nil {
		return []doctor.CheckResult{connect}
	}
	defer sess.Close()

	checks := doctor.NewRemoteChecks(sess, sess.Config(), p.Kinit && !noKinit)
	return append([]doctor.CheckResult{connect}, doctor.RunAll(cmd.Context(), checks)...)
}

func writeDoctorJSON(w io.Writer, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Profile: profileName,
		Results: results,
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func writeDoctorText(w io.Writer, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("issho doctor: "+profileName))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(results)
	for _, category := range doctor.Categories {
		group := grouped[category]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintln(w, headerStyle.Render(category))
		for _, r := range group {
			symbol, style := ui.SymbolComplete, successStyle
			switch r.Status {
			case doctor.StatusWarn:
				style = warnStyle
			case doctor.StatusFail:
				symbol, style = ui.SymbolFail, errorStyle
			}

			fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), r.Message)
			if r.Suggestion != "" && r.Status != doctor.StatusPass {
				for _, line := range strings.Split(r.Suggestion, "\n") {
					fmt.Fprintf(w, "    %s\n", ui.Muted(line))
				}
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	}
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorLocal, "local", false, "skip the checks that connect to the remote host")
	rootCmd.AddCommand(doctorCmd)
}
