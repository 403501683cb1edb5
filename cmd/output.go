package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/posture-check/internal/posture"
)

// displayResult formats and writes a classification result.
func displayResult(w io.Writer, result posture.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human", "":
		displayHuman(w, result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (human, json, yaml)", format)
	}
}

func displayJSON(w io.Writer, result posture.Result) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, result posture.Result) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, result posture.Result) {
	header := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	riskColor(result.OverallRisk).Fprintf(w, "OVERALL RISK: %s\n\n", strings.ToUpper(result.OverallRisk.String()))

	header.Fprintln(w, "BACK VIEW (frontal plane)")
	fmt.Fprintf(w, "   risk:          %s\n", riskColor(result.FrontalRisk).Sprint(result.FrontalRisk))
	fmt.Fprintf(w, "   shoulder diff: %.3f\n", result.Metrics.Back.ShoulderDiff)
	fmt.Fprintf(w, "   hip diff:      %.3f\n\n", result.Metrics.Back.HipDiff)

	header.Fprintln(w, "SIDE VIEW (sagittal plane)")
	fmt.Fprintf(w, "   risk:          %s\n", riskColor(result.SagittalRisk).Sprint(result.SagittalRisk))
	fmt.Fprintf(w, "   forward head:  %.3f\n", result.Metrics.Side.ForwardHead)
	fmt.Fprintf(w, "   trunk lean:    %.3f\n\n", result.Metrics.Side.TrunkLean)

	header.Fprintln(w, "FINDINGS")
	for i, line := range result.Explanation {
		fmt.Fprintf(w, "   %d. %s\n", i+1, line)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func riskColor(level posture.RiskLevel) *color.Color {
	switch level {
	case posture.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case posture.RiskMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}
