package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/posture-check/internal/config"
	"github.com/example/posture-check/internal/posture"
)

type classifyOptions struct {
	shoulderDiff float64
	hipDiff      float64
	forwardHead  float64
	trunkLean    float64
	output       string
	configPath   string
}

func NewClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify already measured distances without photos",
		Long: `Run the risk classifier over known landmark distances. Distances are
fractions of the image size, as produced by the pose estimator.

Examples:
  # Upright posture
  posturecheck classify --shoulder-diff 0.01 --hip-diff 0.02 --forward-head 0.02 --trunk-lean 0.01

  # Machine-readable output with thresholds from a config file
  posturecheck classify --shoulder-diff 0.07 -o json -c config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.shoulderDiff, "shoulder-diff", 0, "Vertical distance between shoulders (back view)")
	cmd.Flags().Float64Var(&opts.hipDiff, "hip-diff", 0, "Vertical distance between hips (back view)")
	cmd.Flags().Float64Var(&opts.forwardHead, "forward-head", 0, "Horizontal distance nose to shoulder (side view)")
	cmd.Flags().Float64Var(&opts.trunkLean, "trunk-lean", 0, "Horizontal distance shoulder to ankle (side view)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Read thresholds from this YAML config file")

	return cmd
}

func runClassify(cmd *cobra.Command, opts *classifyOptions) error {
	for name, v := range map[string]float64{
		"shoulder-diff": opts.shoulderDiff,
		"hip-diff":      opts.hipDiff,
		"forward-head":  opts.forwardHead,
		"trunk-lean":    opts.trunkLean,
	} {
		if v < 0 {
			return fmt.Errorf("--%s must not be negative", name)
		}
	}

	thresholds := posture.DefaultThresholds()
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		if err := config.ValidateThresholds(cfg.Thresholds); err != nil {
			return err
		}
		thresholds = cfg.Thresholds
	}

	result := posture.NewClassifier(thresholds).Evaluate(
		posture.BackMetrics{ShoulderDiff: opts.shoulderDiff, HipDiff: opts.hipDiff},
		posture.SideMetrics{ForwardHead: opts.forwardHead, TrunkLean: opts.trunkLean},
	)
	return displayResult(cmd.OutOrStdout(), result, opts.output)
}
