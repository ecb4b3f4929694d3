package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yashubustudio/texteval/evaluator"
	"yashubustudio/texteval/internal/logger"
)

type cliOptions struct {
	configPath string
	logLevel   string
	fromFiles  bool
}

// app carries state shared by every subcommand. The engine is built after
// flags are parsed and closed when the command returns.
type app struct {
	opts   cliOptions
	engine *evaluator.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "texteval-cli",
		Short:         "Score, translate and summarize text with local and remote models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.engine == nil {
				return nil
			}
			return a.engine.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	root.PersistentFlags().StringVar(&a.opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default from config)")
	root.PersistentFlags().BoolVar(&a.opts.fromFiles, "from-files", false, "Treat text arguments as paths to UTF-8 files")

	root.AddCommand(
		a.evaluateCmd(),
		a.compareCmd(),
		a.translateCmd(),
		a.summarizeCmd(),
		a.batchCmd(),
		a.languagesCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := evaluator.LoadConfig(strings.TrimSpace(a.opts.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if a.opts.logLevel != "" {
		level = a.opts.logLevel
	}
	logger.Setup(level, cfg.Log.Format)
	a.engine = evaluator.NewEngine(cfg, evaluator.WithLogger(logger.Log))
	return nil
}

func (a *app) evaluateCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "evaluate ORIGINAL CANDIDATE",
		Short: "Score a candidate against its original",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, candidate, err := a.texts(args[0], args[1])
			if err != nil {
				return err
			}
			if detailed {
				return writeJSON(cmd.OutOrStdout(), a.engine.Report(cmd.Context(), original, candidate))
			}
			return writeJSON(cmd.OutOrStdout(), a.engine.Evaluate(cmd.Context(), original, candidate))
		},
	}
	cmd.Flags().BoolVar(&detailed, "report", false, "Include ROUGE, all readability indices and text stats")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   "compare ORIGINAL CANDIDATE",
		Short: "Score a candidate and the gold transform of its original",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, candidate, err := a.texts(args[0], args[1])
			if err != nil {
				return err
			}
			c := a.engine.Compare(cmd.Context(), original, candidate, reference)
			if c.Reference == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "no reference pair found for the original text")
			}
			return writeJSON(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "CSV/TSV of gold pairs (default from config)")
	return cmd
}

func (a *app) translateCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "translate TEXT",
		Short: "Translate English text into a supported language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.text(args[0])
			if err != nil {
				return err
			}
			out, err := a.engine.Translate(cmd.Context(), text, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "Target language: "+strings.Join(evaluator.SupportedLanguages(), ", "))
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) summarizeCmd() *cobra.Command {
	var (
		model      string
		paraphrase bool
		evaluate   bool
	)
	cmd := &cobra.Command{
		Use:   "summarize TEXT",
		Short: "Summarize or paraphrase text with a generation model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.text(args[0])
			if err != nil {
				return err
			}
			p := evaluator.Params{Task: evaluator.TaskSummarize}
			if paraphrase {
				p.Task = evaluator.TaskParaphrase
			}
			out, err := a.engine.Generate(cmd.Context(), model, text, p)
			if err != nil {
				return err
			}
			if !evaluate {
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Candidate string           `json:"candidate"`
				Report    evaluator.Report `json:"report"`
			}{out, a.engine.Report(cmd.Context(), text, out)})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Generation model or alias (default from config)")
	cmd.Flags().BoolVar(&paraphrase, "paraphrase", false, "Paraphrase instead of summarizing")
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Also score the output against the input")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var (
		input, output, outputDir string
		stdout                   bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every (original, candidate) row of a CSV/TSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := evaluator.ParsePairs(strings.TrimSpace(input))
			if err != nil {
				return fmt.Errorf("read pairs: %w", err)
			}
			results := a.engine.EvaluateAll(cmd.Context(), pairs)

			path, err := resolveOutputPath(strings.TrimSpace(output), strings.TrimSpace(outputDir))
			if err != nil {
				return err
			}
			if err := writeResultCSV(path, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d results to %s\n", len(results), path)
			if stdout {
				printSummary(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "CSV/TSV file of original and candidate texts")
	cmd.Flags().StringVar(&output, "output", "", "CSV file to write results (default uses --output-dir/result_*.csv)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print summary results to STDOUT")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported translation targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range evaluator.SupportedLanguages() {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
			return nil
		},
	}
}

func (a *app) texts(original, candidate string) (string, string, error) {
	o, err := a.text(original)
	if err != nil {
		return "", "", err
	}
	c, err := a.text(candidate)
	if err != nil {
		return "", "", err
	}
	return o, c, nil
}

// text resolves one argument; "-" always reads stdin.
func (a *app) text(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if !a.opts.fromFiles {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	text := evaluator.NormalizeText(string(data))
	if text == "" {
		return "", errors.New(arg + " is empty")
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
