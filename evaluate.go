package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"elena-agent/domain"
	"elena-agent/service"
)

var (
	evaluateInput string
	evaluateTerms bool
	evaluatePure  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one affordability request from a JSON file or stdin",
	Example: `  echo '{"overrides":{"income":6000,"expenses":1500,"price":400000,"downpayment":40000,"creditScore":760}}' | elena evaluate
  elena evaluate --input request.json --terms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd.InOrStdin(), evaluateInput)
		if err != nil {
			return err
		}

		var out any
		switch {
		case evaluatePure:
			var req domain.EvaluateRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return eris.Wrap(err, "evaluate: decode request")
			}
			out = cfg.Policy.Evaluate(req, service.ProfileIncome(req.Context.Profile))
		default:
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if evaluateTerms {
				var req domain.TermOptionsRequest
				if err := json.Unmarshal(raw, &req); err != nil {
					return eris.Wrap(err, "evaluate: decode request")
				}
				out, err = a.TermOptions.RecommendTerm(cmd.Context(), req)
			} else {
				var req domain.EvaluateRequest
				if err := json.Unmarshal(raw, &req); err != nil {
					return eris.Wrap(err, "evaluate: decode request")
				}
				out, err = a.Affordability.Evaluate(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "evaluate: read stdin")
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read %s", path)
	}
	return raw, nil
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateInput, "input", "i", "", "request JSON file (default stdin)")
	evaluateCmd.Flags().BoolVar(&evaluateTerms, "terms", false, "also compare loan terms")
	evaluateCmd.Flags().BoolVar(&evaluatePure, "pure", false, "skip profile lookup, timeline and metadata")
	evaluateCmd.MarkFlagsMutuallyExclusive("terms", "pure")
	rootCmd.AddCommand(evaluateCmd)
}
