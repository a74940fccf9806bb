// Package main provides the CLI entrypoint for vigenere.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/vigenere/internal/alphabet"
	"github.com/verte-zerg/vigenere/internal/attack"
	"github.com/verte-zerg/vigenere/internal/bench"
	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/config"
	"github.com/verte-zerg/vigenere/internal/model"
	"github.com/verte-zerg/vigenere/internal/score"
	"github.com/verte-zerg/vigenere/internal/stats"
	"github.com/verte-zerg/vigenere/internal/store"
	"github.com/verte-zerg/vigenere/internal/textfile"
	"github.com/verte-zerg/vigenere/internal/tui"
)

const (
	defaultTop          = attack.DefaultTopK
	defaultPreviewWidth = 60
	projectionMaxLen    = 8
)

var (
	attackLang        string
	attackWorkers     int
	attackMaxLen      int
	attackBruteMaxLen int
	attackTop         int
	attackRecord      bool

	crackMode      string
	crackMaxLen    int
	crackLength    int
	crackHistogram bool

	inputText    string
	inputFile    string
	freqLang     string
	benchIters   int
	benchProcs   int
	benchLetters int
	benchKeyLen  int

	historyLast int
	historyMode string
	historyShow int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vigenere",
		Short:         "Vigenère cipher and cryptanalysis toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMenuCmd,
	}
	addAttackFlags(rootCmd)
	rootCmd.Flags().IntVar(&attackMaxLen, "max-len", attack.DefaultStatisticalMaxLen, "max key length for the statistical attack")
	rootCmd.Flags().IntVar(&attackBruteMaxLen, "brute-max-len", attack.DefaultBruteForceMaxLen, "max key length for brute force")

	rootCmd.AddCommand(newCipherCmd("encrypt", "Encrypt text with a key", cipher.EncodeText))
	rootCmd.AddCommand(newCipherCmd("decrypt", "Decrypt text with a key", cipher.DecodeText))
	rootCmd.AddCommand(newCrackCmd())
	rootCmd.AddCommand(newFreqCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addAttackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&attackLang, "lang", alphabet.DefaultLang, "reference language ("+strings.Join(alphabet.Langs(), ", ")+")")
	cmd.Flags().IntVar(&attackWorkers, "workers", 0, "worker pool size (0: a quarter of the CPUs)")
	cmd.Flags().IntVar(&attackTop, "top", defaultTop, "number of candidates to keep")
	cmd.Flags().BoolVar(&attackRecord, "record", false, "record the run in the history database")
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputText, "text", "", "input text")
	cmd.Flags().StringVar(&inputFile, "file", "", "input file ('-' for stdin)")
}

func runMenuCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAttackConfig(cmd)
	if err != nil {
		return err
	}
	freqs, err := alphabet.Lookup(cfg.Lang)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.Record {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer closeStore(st)
	}

	if err := tui.Run(cfg, freqs, st); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadAttackConfig merges the config file into flags the user did not set.
func loadAttackConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &attackLang, fileCfg.Attack.Lang)
	applyIntConfig(cmd, "workers", &attackWorkers, fileCfg.Attack.Workers)
	applyIntConfig(cmd, "max-len", &attackMaxLen, fileCfg.Attack.MaxLen)
	applyIntConfig(cmd, "brute-max-len", &attackBruteMaxLen, fileCfg.Attack.BruteMaxLen)
	applyIntConfig(cmd, "top", &attackTop, fileCfg.Attack.Top)
	applyBoolConfig(cmd, "record", &attackRecord, fileCfg.Attack.Record)

	cfg := model.Config{
		Mode:        crackMode,
		Lang:        strings.ToLower(strings.TrimSpace(attackLang)),
		Workers:     attackWorkers,
		MaxLen:      attackMaxLen,
		BruteMaxLen: attackBruteMaxLen,
		Top:         attackTop,
		Record:      attackRecord,
	}
	if cfg.Mode == "" {
		cfg.Mode = model.ModeStatistical
	}
	if cfg.Workers == 0 {
		cfg.Workers = attack.DefaultWorkers()
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newCipherCmd(use, short string, fn func(text, key string) (string, error)) *cobra.Command {
	var key, text, file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readInput(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			out, err := fn(input, key)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "cipher key")
	cmd.Flags().StringVar(&text, "text", "", "input text")
	cmd.Flags().StringVar(&file, "file", "", "input file ('-' for stdin)")
	if err := cmd.MarkFlagRequired("key"); err != nil {
		logErrf("failed to mark --key required: %v\n", err)
	}
	return cmd
}

// readInput prefers inline text, then a file, then the given reader.
func readInput(stdin io.Reader, text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file != "" && file != "-" {
		return textfile.Load(file)
	}
	return textfile.Read(stdin)
}

func newCrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Recover the key of a ciphertext",
		Args:  cobra.NoArgs,
		RunE:  runCrackCmd,
	}
	addAttackFlags(cmd)
	addInputFlags(cmd)
	cmd.Flags().StringVar(&crackMode, "mode", model.ModeStatistical, "attack mode (statistical, brute)")
	cmd.Flags().IntVar(&crackMaxLen, "max-len", 0, "max key length (default 20 statistical, 4 brute)")
	cmd.Flags().IntVar(&crackLength, "length", 0, "known key length (statistical mode only)")
	cmd.Flags().BoolVar(&crackHistogram, "histogram", false, "print the letter histogram of the best plaintext")
	return cmd
}

func runCrackCmd(cmd *cobra.Command, _ []string) error {
	crackMode = strings.ToLower(strings.TrimSpace(crackMode))
	attackMaxLen = attack.DefaultStatisticalMaxLen
	attackBruteMaxLen = attack.DefaultBruteForceMaxLen
	cfg, err := loadAttackConfig(cmd)
	if err != nil {
		return err
	}
	maxLen := cfg.MaxLen
	if cfg.Mode == model.ModeBruteForce {
		maxLen = cfg.BruteMaxLen
	}
	if cmd.Flags().Changed("max-len") {
		if crackMaxLen < 1 {
			return fmt.Errorf("--max-len must be >= 1")
		}
		maxLen = crackMaxLen
	}
	if crackLength < 0 || (crackLength > 0 && cfg.Mode != model.ModeStatistical) {
		return fmt.Errorf("--length must be >= 1 and needs --mode %s", model.ModeStatistical)
	}

	text, err := readInput(cmd.InOrStdin(), inputText, inputFile)
	if err != nil {
		return err
	}
	freqs, err := alphabet.Lookup(cfg.Lang)
	if err != nil {
		return err
	}
	letters := len(alphabet.Normalize(text))

	a := attack.New(
		attack.WithWorkers(cfg.Workers),
		attack.WithTable(freqs),
		attack.WithTopK(cfg.Top),
		attack.WithLogger(logErrf),
		attack.WithProgress(func(r attack.LengthReport) {
			line := fmt.Sprintf(" > length %d: %d keys [done in %.2fs]", r.Length, r.Keys, r.Elapsed.Seconds())
			if r.Found {
				line += fmt.Sprintf(" best %s (%s)", r.Best.Key, stats.FormatScore(r.Best.Score))
			}
			logErrln(line)
		}),
	)
	logErrf("[*] %s attack, lang %s, %d workers on %d CPUs\n", cfg.Mode, cfg.Lang, a.Workers(), runtime.NumCPU())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	var cands []model.Candidate
	switch cfg.Mode {
	case model.ModeBruteForce:
		if err := attack.CheckBruteForceLength(maxLen); err != nil {
			return err
		}
		if maxLen > attack.BruteForceWarnLength {
			logErrf("warning: length %d means %d keys for the last length alone; this can take a very long time\n",
				maxLen, attack.KeyspaceSize(maxLen))
		}
		cands, err = a.BruteForce(ctx, text, maxLen)
	default:
		if letters < attack.MinStatisticalLetters {
			logErrf("warning: only %d letters; frequency analysis is unreliable on short texts\n", letters)
		}
		if crackLength > 0 {
			maxLen = crackLength
			var c model.Candidate
			c, err = a.StatisticalLength(text, crackLength)
			if err == nil {
				cands = []model.Candidate{c}
			}
		} else {
			cands, err = a.Statistical(ctx, text, maxLen)
		}
	}
	if err != nil {
		return fmt.Errorf("attack failed: %w", err)
	}
	ended := time.Now()
	logErrf("[*] Completed in %s\n", stats.FormatDuration(ended.Sub(started).Seconds()))

	out := cmd.OutOrStdout()
	if err := stats.RenderRanking(out, cands, cfg.Top, defaultPreviewWidth); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if cfg.Mode == model.ModeStatistical && len(cands) > 1 {
		if _, err := fmt.Fprintf(out, "\nScore by key length: %s\n", stats.Sparkline(stats.ScoresByKeyLength(cands))); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if crackHistogram && len(cands) > 0 {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderHistogram(out, cands[0].Text, freqs, 0); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if cfg.Record {
		run := model.RunRecord{
			StartedAt:  started,
			EndedAt:    ended,
			Mode:       cfg.Mode,
			Lang:       cfg.Lang,
			MaxLen:     maxLen,
			Workers:    a.Workers(),
			TextLen:    letters,
			DurationMs: ended.Sub(started).Milliseconds(),
		}
		if err := recordRun(ctx, run, cands); err != nil {
			return err
		}
	}
	return nil
}

func recordRun(ctx context.Context, run model.RunRecord, cands []model.Candidate) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	id, err := st.InsertRun(ctx, run, cands)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	logErrf("[*] Recorded run #%d\n", id)
	return nil
}

func newFreqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freq",
		Short: "Show the letter histogram of a text",
		Args:  cobra.NoArgs,
		RunE:  runFreqCmd,
	}
	cmd.Flags().StringVar(&freqLang, "lang", alphabet.DefaultLang, "reference language")
	addInputFlags(cmd)
	return cmd
}

func runFreqCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "lang", &freqLang, fileCfg.Attack.Lang)
	freqs, err := alphabet.Lookup(strings.ToLower(strings.TrimSpace(freqLang)))
	if err != nil {
		return err
	}
	text, err := readInput(cmd.InOrStdin(), inputText, inputFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderHistogram(out, text, freqs, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	chi := score.ChiSquaredString(alphabet.Normalize(text), freqs)
	if _, err := fmt.Fprintf(out, "Chi-squared: %s\n", stats.FormatScore(chi)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure decode throughput and project brute-force time",
		Args:  cobra.NoArgs,
		RunE:  runBenchCmd,
	}
	cmd.Flags().IntVar(&benchIters, "iterations", bench.DefaultIterations, "total decode cycles")
	cmd.Flags().IntVar(&benchProcs, "workers", 0, "worker pool size (0: a quarter of the CPUs)")
	cmd.Flags().IntVar(&benchLetters, "letters", 0, "random payload length (0: built-in sentence)")
	cmd.Flags().IntVar(&benchKeyLen, "key-len", 0, "random key length (0: built-in key)")
	return cmd
}

func runBenchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "workers", &benchProcs, fileCfg.Attack.Workers)
	if benchIters < 1 {
		return fmt.Errorf("--iterations must be >= 1")
	}
	if benchProcs < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if benchLetters < 0 || benchKeyLen < 0 {
		return fmt.Errorf("--letters and --key-len must be >= 0")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logErrf("[Running] %d decode cycles...\n", benchIters)
	res, err := bench.Run(ctx, bench.Options{
		Iterations: benchIters,
		Workers:    benchProcs,
		Letters:    benchLetters,
		KeyLen:     benchKeyLen,
	})
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	out := cmd.OutOrStdout()
	lines := []string{
		fmt.Sprintf("Workers:    %d (%d CPUs)", res.Workers, runtime.NumCPU()),
		fmt.Sprintf("Total time: %.4f s", res.Elapsed.Seconds()),
		fmt.Sprintf("Throughput: %.0f ops/s", res.OpsPerSec),
		"",
		"Brute-force projection:",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.RenderProjection(out, res.OpsPerSec, projectionMaxLen); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded attack runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().StringVar(&historyMode, "mode", "", "mode filter (statistical, brute)")
	cmd.Flags().Int64Var(&historyShow, "show", 0, "print the candidates of a run")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	mode := strings.ToLower(strings.TrimSpace(historyMode))
	if mode != "" && mode != model.ModeStatistical && mode != model.ModeBruteForce {
		return fmt.Errorf("--mode must be %q or %q", model.ModeStatistical, model.ModeBruteForce)
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	if historyShow > 0 {
		cands, err := st.ListCandidates(ctx, historyShow)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", historyShow, err)
		}
		return stats.RenderRanking(out, cands, 0, defaultPreviewWidth)
	}
	runs, err := st.ListRuns(ctx, model.HistoryFilter{Mode: mode, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return stats.RenderHistory(out, runs)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# vigenere configuration
# Uncomment a value to enable it. CLI flags override config values.

[attack]
# lang = %q              # Reference language (%s)
# workers = 0             # Worker pool size, 0 uses a quarter of the CPUs
# max-len = %d            # Max key length for the statistical attack
# brute-max-len = %d       # Max key length for brute force
# top = %d                # Candidates kept by brute force
# record = false          # Store every run in the history database
`,
		alphabet.DefaultLang,
		strings.Join(alphabet.Langs(), ", "),
		attack.DefaultStatisticalMaxLen,
		attack.DefaultBruteForceMaxLen,
		defaultTop,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Mode != model.ModeStatistical && cfg.Mode != model.ModeBruteForce {
		return fmt.Errorf("--mode must be %q or %q", model.ModeStatistical, model.ModeBruteForce)
	}
	if _, err := alphabet.Lookup(cfg.Lang); err != nil {
		return fmt.Errorf("--lang: %w", err)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if cfg.MaxLen < 1 {
		return fmt.Errorf("--max-len must be >= 1")
	}
	if cfg.BruteMaxLen < 1 || cfg.BruteMaxLen > attack.MaxBruteForceLength {
		return fmt.Errorf("--brute-max-len must be between 1 and %d", attack.MaxBruteForceLength)
	}
	if cfg.Top < 1 {
		return fmt.Errorf("--top must be >= 1")
	}
	return nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
