// Package main provides the CLI entrypoint for rotaenot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/rotaenot/internal/chart"
	"github.com/verte-zerg/rotaenot/internal/config"
	"github.com/verte-zerg/rotaenot/internal/generator"
	"github.com/verte-zerg/rotaenot/internal/judgment"
	"github.com/verte-zerg/rotaenot/internal/model"
	"github.com/verte-zerg/rotaenot/internal/play"
	"github.com/verte-zerg/rotaenot/internal/rating"
	"github.com/verte-zerg/rotaenot/internal/report"
	"github.com/verte-zerg/rotaenot/internal/rotation"
	"github.com/verte-zerg/rotaenot/internal/score"
	"github.com/verte-zerg/rotaenot/internal/store"
)

const (
	defaultDifficulty     = 7
	defaultDuration       = 60.0
	defaultJitterMs       = 45.0
	defaultAlignTolerance = 45.0
	defaultFrameRate      = 60.0
	defaultInput          = string(play.InputSimulate)
	generatedSongID       = "generated"
)

var (
	playSongID         string
	playChartPath      string
	playDifficulty     int
	playDuration       float64
	playBaseNoteScore  int
	playJitterMs       float64
	playAlignTolerance float64
	playFrameRate      float64
	playSeed           int64
	playInput          string
	playCalibration    float64
	playSmoothing      float64
	playDeadZone       float64
	playPerfectMs      float64
	playGreatMs        float64
	playGoodMs         float64
	playDBPath         string
	playNoRecord       bool
	playTraceWidth     int

	judgePerfectMs float64
	judgeGreatMs   float64
	judgeGoodMs    float64

	b40Count  int
	b40DBPath string
	b40Song   string
	b40Since  string

	chartGenOut        string
	chartGenDifficulty int
	chartGenDuration   float64
	chartGenAudio      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rotCfg := rotation.DefaultConfig()
	win := judgment.DefaultWindow()

	rootCmd := &cobra.Command{
		Use:           "rotaenot",
		Short:         "Rotation rhythm game simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playSongID, "song", "", "song id for the score record (default: chart title)")
	rootCmd.Flags().StringVar(&playChartPath, "chart", "", "chart file to play (default: generated chart)")
	rootCmd.Flags().IntVar(&playDifficulty, "difficulty", defaultDifficulty, "difficulty level")
	rootCmd.Flags().Float64Var(&playDuration, "duration", defaultDuration, "generated chart length in seconds")
	rootCmd.Flags().IntVar(&playBaseNoteScore, "base-note-score", score.DefaultBaseNoteScore, "points for a perfect hit")
	rootCmd.Flags().Float64Var(&playJitterMs, "jitter-ms", defaultJitterMs, "std deviation of simulated hit timing (ms)")
	rootCmd.Flags().Float64Var(&playAlignTolerance, "align-tolerance", defaultAlignTolerance, "max angle error for a hit (degrees)")
	rootCmd.Flags().Float64Var(&playFrameRate, "frame-rate", defaultFrameRate, "simulated frames per second")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0: time based)")
	rootCmd.Flags().StringVar(&playInput, "input", defaultInput, "input path: simulate, tilt, or gyro")
	rootCmd.Flags().Float64Var(&playCalibration, "calibration", 0, "device angle treated as zero (degrees)")
	rootCmd.Flags().Float64Var(&playSmoothing, "smoothing-factor", rotCfg.SmoothingFactor, "smoothing factor (0-1)")
	rootCmd.Flags().Float64Var(&playDeadZone, "dead-zone", rotCfg.DeadZone, "dead zone (degrees)")
	rootCmd.Flags().Float64Var(&playPerfectMs, "perfect", win.Perfect, "perfect window (ms)")
	rootCmd.Flags().Float64Var(&playGreatMs, "great", win.Great, "great window (ms)")
	rootCmd.Flags().Float64Var(&playGoodMs, "good", win.Good, "good window (ms)")
	rootCmd.Flags().StringVar(&playDBPath, "db", "", "score database path (default: XDG data dir)")
	rootCmd.Flags().BoolVar(&playNoRecord, "no-record", false, "do not store the score record")
	rootCmd.Flags().IntVar(&playTraceWidth, "trace-width", 0, "angle trace width (0: terminal width)")

	rootCmd.AddCommand(newJudgeCmd())
	rootCmd.AddCommand(newB40Cmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "smoothing-factor", &playSmoothing, fileCfg.Rotation.SmoothingFactor)
	applyFloatConfig(cmd, "dead-zone", &playDeadZone, fileCfg.Rotation.DeadZone)
	applyFloatConfig(cmd, "frame-rate", &playFrameRate, fileCfg.Rotation.FrameRate)
	applyStringConfig(cmd, "input", &playInput, fileCfg.Rotation.Input)
	applyFloatConfig(cmd, "calibration", &playCalibration, fileCfg.Rotation.Calibration)
	applyFloatConfig(cmd, "perfect", &playPerfectMs, fileCfg.Judgment.Perfect)
	applyFloatConfig(cmd, "great", &playGreatMs, fileCfg.Judgment.Great)
	applyFloatConfig(cmd, "good", &playGoodMs, fileCfg.Judgment.Good)
	applyIntConfig(cmd, "difficulty", &playDifficulty, fileCfg.Play.Difficulty)
	applyFloatConfig(cmd, "duration", &playDuration, fileCfg.Play.Duration)
	applyIntConfig(cmd, "base-note-score", &playBaseNoteScore, fileCfg.Play.BaseNoteScore)
	applyFloatConfig(cmd, "jitter-ms", &playJitterMs, fileCfg.Play.JitterMs)
	applyFloatConfig(cmd, "align-tolerance", &playAlignTolerance, fileCfg.Play.AlignTolerance)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Play.Seed)

	cfg := model.PlayConfig{
		SongID:         playSongID,
		ChartPath:      playChartPath,
		Difficulty:     playDifficulty,
		Duration:       playDuration,
		BaseNoteScore:  playBaseNoteScore,
		JitterMs:       playJitterMs,
		AlignTolerance: playAlignTolerance,
		FrameRate:      playFrameRate,
		Seed:           playSeed,
		Input:          playInput,
		Calibration:    playCalibration,
	}
	opts := play.Options{
		Input:          play.Input(cfg.Input),
		Rotation:       rotation.Config{SmoothingFactor: playSmoothing, DeadZone: playDeadZone},
		Window:         judgment.Window{Perfect: playPerfectMs, Great: playGreatMs, Good: playGoodMs},
		BaseNoteScore:  cfg.BaseNoteScore,
		FrameRate:      cfg.FrameRate,
		AlignTolerance: cfg.AlignTolerance,
		Calibration:    cfg.Calibration,
	}
	if err := validatePlayConfig(cfg); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid play options: %w", err)
	}

	gen := generator.New()
	if cfg.Seed != 0 {
		gen = generator.NewSeeded(cfg.Seed)
	}

	c, songID, err := resolveChart(cmd, cfg, gen)
	if err != nil {
		return err
	}
	if problems := chart.Validate(c); len(problems) > 0 {
		for _, p := range problems {
			logErrf("chart warning: %s\n", p)
		}
	}

	offsets := gen.HitOffsets(len(c.Notes), cfg.JitterMs)
	res, err := play.Run(songID, c, offsets, opts)
	if err != nil {
		return fmt.Errorf("failed to play chart: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, res); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderTrace(out, res.Trace, playTraceWidth); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if playNoRecord {
		return nil
	}
	st, err := openStore(playDBPath)
	if err != nil {
		logErrf("failed to open db: %v\n", err)
		return nil
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if _, err := st.InsertRecord(context.Background(), res.ID, res.Record(time.Now())); err != nil {
		logErrf("failed to save score record: %v\n", err)
		return nil
	}
	logErrln("Score record saved.")
	return nil
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = config.DefaultDBPath()
	}
	return store.Open(path)
}

// resolveChart loads the chart named by --chart or generates one. The
// --difficulty flag overrides a loaded chart's level only when set.
func resolveChart(cmd *cobra.Command, cfg model.PlayConfig, gen *generator.Generator) (model.Chart, string, error) {
	if cfg.ChartPath == "" {
		c := gen.Chart("", cfg.Duration, cfg.Difficulty)
		songID := cfg.SongID
		if songID == "" {
			songID = fmt.Sprintf("%s-%d", generatedSongID, cfg.Difficulty)
		}
		return c, songID, nil
	}
	c, err := chart.Load(cfg.ChartPath)
	if err != nil {
		return model.Chart{}, "", fmt.Errorf("failed to load chart: %w", err)
	}
	if cmd.Flags().Changed("difficulty") {
		c.Difficulty = cfg.Difficulty
	}
	songID := cfg.SongID
	if songID == "" {
		songID = c.Title
	}
	if songID == "" {
		songID = strings.TrimSuffix(filepath.Base(cfg.ChartPath), filepath.Ext(cfg.ChartPath))
	}
	return c, songID, nil
}

func newJudgeCmd() *cobra.Command {
	win := judgment.DefaultWindow()
	cmd := &cobra.Command{
		Use:   "judge <offset-ms>...",
		Short: "Judge timing offsets",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runJudgeCmd,
	}
	cmd.Flags().Float64Var(&judgePerfectMs, "perfect", win.Perfect, "perfect window (ms)")
	cmd.Flags().Float64Var(&judgeGreatMs, "great", win.Great, "great window (ms)")
	cmd.Flags().Float64Var(&judgeGoodMs, "good", win.Good, "good window (ms)")
	return cmd
}

func runJudgeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "perfect", &judgePerfectMs, fileCfg.Judgment.Perfect)
	applyFloatConfig(cmd, "great", &judgeGreatMs, fileCfg.Judgment.Great)
	applyFloatConfig(cmd, "good", &judgeGoodMs, fileCfg.Judgment.Good)

	win := judgment.Window{Perfect: judgePerfectMs, Great: judgeGreatMs, Good: judgeGoodMs}
	if err := win.Validate(); err != nil {
		return err
	}
	lines, err := judgeOffsets(win, args)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func judgeOffsets(win judgment.Window, args []string) ([]string, error) {
	lines := make([]string, 0, len(args))
	for _, arg := range args {
		offset, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", arg, err)
		}
		lines = append(lines, fmt.Sprintf("%s\t%s", arg, win.Judge(offset)))
	}
	return lines, nil
}

func newB40Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "b40 [records.json]",
		Short: "Show the Best 40 rating",
		Long:  "Show the Best 40 rating from the score database, or from an exported JSON array of records.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runB40Cmd,
	}
	cmd.Flags().IntVar(&b40Count, "top", rating.BestCount, "number of songs counted")
	cmd.Flags().StringVar(&b40DBPath, "db", "", "score database path (default: XDG data dir)")
	cmd.Flags().StringVar(&b40Song, "song", "", "only records for this song")
	cmd.Flags().StringVar(&b40Since, "since", "", "only records played on or after this date (YYYY-MM-DD)")
	return cmd
}

func runB40Cmd(cmd *cobra.Command, args []string) error {
	if b40Count <= 0 {
		return fmt.Errorf("--top must be > 0")
	}
	var recs []model.ScoreRecord
	if len(args) == 1 {
		loaded, err := rating.LoadRecords(args[0])
		if err != nil {
			return err
		}
		recs = loaded
	} else {
		filter := store.RecordFilter{SongID: b40Song}
		if b40Since != "" {
			parsed, err := time.ParseInLocation("2006-01-02", b40Since, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			filter.Since = &parsed
		}
		st, err := openStore(b40DBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		recs, err = st.ListRecords(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("failed to load score records: %w", err)
		}
	}
	total, best := rating.FromRecords(recs).Best(b40Count)
	if err := report.RenderBest40(cmd.OutOrStdout(), total, best); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Generate and validate charts",
	}

	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a generated chart",
		Args:  cobra.NoArgs,
		RunE:  runChartGenerateCmd,
	}
	genCmd.Flags().StringVar(&chartGenOut, "out", "", "output path (default: XDG config charts dir)")
	genCmd.Flags().IntVar(&chartGenDifficulty, "difficulty", defaultDifficulty, "difficulty level")
	genCmd.Flags().Float64Var(&chartGenDuration, "duration", defaultDuration, "chart length in seconds")
	genCmd.Flags().StringVar(&chartGenAudio, "audio", "", "audio file referenced by the chart")

	validateCmd := &cobra.Command{
		Use:   "validate <chart.json>",
		Short: "Check a chart for spacing and position problems",
		Args:  cobra.ExactArgs(1),
		RunE:  runChartValidateCmd,
	}

	cmd.AddCommand(genCmd, validateCmd)
	return cmd
}

func runChartGenerateCmd(cmd *cobra.Command, _ []string) error {
	if chartGenDifficulty < 0 {
		return fmt.Errorf("--difficulty must be >= 0")
	}
	if !(chartGenDuration > 0) {
		return fmt.Errorf("--duration must be > 0")
	}
	out := chartGenOut
	if out == "" {
		out = filepath.Join(config.DefaultChartDir(), fmt.Sprintf("%s-%d.json", generatedSongID, chartGenDifficulty))
	}
	c := generator.New().Chart(chartGenAudio, chartGenDuration, chartGenDifficulty)
	if err := chart.Save(out, c); err != nil {
		return err
	}
	logErrf("Wrote %s (%d notes)\n", out, len(c.Notes))
	return nil
}

func runChartValidateCmd(cmd *cobra.Command, args []string) error {
	c, err := chart.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}
	problems := chart.Validate(c)
	w := cmd.OutOrStdout()
	if len(problems) == 0 {
		if _, err := fmt.Fprintf(w, "%s: ok (%d notes)\n", args[0], len(c.Notes)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	for _, p := range problems {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return fmt.Errorf("chart has %d problem(s)", len(problems))
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the values set in the config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigShowCmd,
	})
	return cmd
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

func runConfigShowCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(fileCfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	rotCfg := rotation.DefaultConfig()
	win := judgment.DefaultWindow()
	return fmt.Sprintf(`# rotaenot configuration
# Uncomment a value to enable it. CLI flags override config values.

[rotation]
# smoothing-factor = %.2f  # Weight decay for angle smoothing (0-1)
# dead-zone = %.1f         # Ignore changes smaller than this (degrees)
# frame-rate = %.1f       # Simulated frames per second
# input = %q       # Input path: simulate, tilt, or gyro
# calibration = 0.0        # Device angle treated as zero (degrees)

[judgment]
# perfect = %.1f          # Perfect window (ms)
# great = %.1f            # Great window (ms)
# good = %.1f            # Good window (ms)

[play]
# difficulty = %d          # Difficulty level
# duration = %.1f         # Generated chart length (seconds)
# base-note-score = %d   # Points for a perfect hit
# jitter-ms = %.1f        # Std deviation of simulated hit timing (ms)
# align-tolerance = %.1f  # Max angle error for a hit (degrees)
# seed = 0                 # Random seed (0: time based)
`,
		rotCfg.SmoothingFactor,
		rotCfg.DeadZone,
		defaultFrameRate,
		defaultInput,
		win.Perfect,
		win.Great,
		win.Good,
		defaultDifficulty,
		defaultDuration,
		score.DefaultBaseNoteScore,
		defaultJitterMs,
		defaultAlignTolerance,
	)
}

func validatePlayConfig(cfg model.PlayConfig) error {
	if cfg.Difficulty < 0 {
		return fmt.Errorf("--difficulty must be >= 0")
	}
	if cfg.ChartPath == "" && !(cfg.Duration > 0) {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.JitterMs < 0 {
		return fmt.Errorf("--jitter-ms must be >= 0")
	}
	return nil
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
