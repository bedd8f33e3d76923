package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/stroke"
)

type recognizeFlags struct {
	sensitivity int
	width       float64
	kind        string
	candidates  bool
	diagnose    bool
}

func (a *app) newRecognizeCmd() *cobra.Command {
	var f recognizeFlags

	cmd := &cobra.Command{
		Use:   "recognize <file>",
		Short: "Recognize the stroke in a JSON stroke file",
		Long: `Recognize the stroke stored in a JSON file such as

  {"points": [{"x": 0, "y": 0}, {"x": 4, "y": 1}], "width": 4, "sensitivity": 50}

and print the result as JSON. Flags override the file, which overrides the
configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRecognize(cmd, args[0], f)
		},
	}

	cmd.Flags().IntVarP(&f.sensitivity, "sensitivity", "s", 0, "sensitivity, 0 (strict) to 100 (loose)")
	cmd.Flags().Float64VarP(&f.width, "width", "w", 0, "pen width in pixels")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "force a shape kind: line, circle or parabola")
	cmd.Flags().BoolVar(&f.candidates, "candidates", false, "list every accepted candidate instead of the best one")
	cmd.Flags().BoolVar(&f.diagnose, "diagnose", false, "print every estimator verdict")
	cmd.MarkFlagsMutuallyExclusive("kind", "candidates", "diagnose")

	return cmd
}

func (a *app) runRecognize(cmd *cobra.Command, path string, f recognizeFlags) error {
	st, err := stroke.NewCache().Load(path)
	if err != nil {
		return err
	}

	width := st.WidthOr(a.cfg.Recognition.StrokeWidth)
	if cmd.Flags().Changed("width") {
		if f.width <= 0 {
			return fmt.Errorf("width must be positive, got %v", f.width)
		}
		width = f.width
	}
	s := st.SensitivityOr(a.cfg.Recognition.Sensitivity)
	if cmd.Flags().Changed("sensitivity") {
		if f.sensitivity < 0 || f.sensitivity > 100 {
			return fmt.Errorf("sensitivity %d out of range [0, 100]", f.sensitivity)
		}
		s = f.sensitivity
	}

	var opts []detection.Option
	if a.cfg.Recognition.Seed != 0 {
		opts = append(opts, detection.WithSeed(a.cfg.Recognition.Seed))
	}
	rec := detection.New(opts...)

	out := cmd.OutOrStdout()
	switch {
	case f.diagnose:
		return printJSON(out, rec.Diagnose(st.Points, width, s))
	case f.candidates:
		cands := rec.Candidates(st.Points, width, s)
		if cands == nil {
			cands = []detection.Candidate{}
		}
		return printJSON(out, cands)
	case f.kind != "":
		kind, err := detection.ParseKind(f.kind)
		if err != nil {
			return err
		}
		res, _ := rec.Convert(st.Points, width, s, kind)
		return printJSON(out, res)
	default:
		return printJSON(out, rec.Recognize(st.Points, width, s))
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
