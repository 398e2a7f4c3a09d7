package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-acorde/analysis"
	"github.com/RyanBlaney/sonido-acorde/config"
	"github.com/RyanBlaney/sonido-acorde/generate"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/midifile"
	"github.com/RyanBlaney/sonido-acorde/patterns"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
	noColor    bool
	cfg        *config.Config

	// analyze
	profileOut  string
	jsonOutput  bool
	noBeatSync  bool
	noHMM       bool
	extended    bool
	saveName    string
	saveTags    []string
	analyzeMIDI string

	// generate
	profileIn     string
	keyName       string
	modeName      string
	tempo         float64
	harmonic      float64
	bars          int
	complexity    int
	seed          int64
	startChord    string
	cadenceWeight float64
	midiOut       string

	// patterns list
	filterName string
	filterTags []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sonido-acorde",
	Short: "Analyze a recording's harmony and generate progressions in its style",
	Long: `sonido-acorde detects tempo, key and chords in an audio file, builds a
style profile from them, and samples new chord progressions in that style.

Pipeline: audio → beats → chroma → key → chords → style profile → progression`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio-file>",
	Short: "Detect tempo, key and chords in an audio file",
	Long: `Analyze an audio file and print its key, tempo and chord sequence.

Examples:
  sonido-acorde analyze song.wav
  sonido-acorde analyze song.mp3 --profile-out song.profile.json
  sonido-acorde analyze song.wav --json --extended`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a chord progression",
	Long: `Generate a chord progression from a saved style profile or from a key.

Examples:
  sonido-acorde generate --key C --mode major --bars 8
  sonido-acorde generate --profile song.profile.json --complexity 1 --midi out.mid
  sonido-acorde generate --key A --mode minor --seed 7 --start iv --save "Minor idea"`,
	RunE: runGenerate,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Manage saved progressions",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved progressions",
	Args:  cobra.NoArgs,
	RunE:  runPatternsList,
}

var patternsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved progression as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatternsShow,
}

var patternsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved progression",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatternsDelete,
}

var patternsExportCmd = &cobra.Command{
	Use:   "export <id> [file.mid]",
	Short: "Write a saved progression as a MIDI file",
	Long: `Write a saved progression as a MIDI file. Without a file argument the
file is named after the pattern and placed in the configured export_dir.`,
	Args: cobra.RangeArgs(1, 2),
	RunE:  runPatternsExport,
}

var patternsPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Install the built-in preset progressions",
	Args:  cobra.NoArgs,
	RunE:  runPatternsPresets,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	patternsCmd.AddCommand(patternsDeleteCmd)
	patternsCmd.AddCommand(patternsExportCmd)
	patternsCmd.AddCommand(patternsPresetsCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")

	analyzeCmd.Flags().StringVar(&profileOut, "profile-out", "", "Write the style profile to this JSON file")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full analysis as JSON")
	analyzeCmd.Flags().BoolVar(&noBeatSync, "no-beat-sync", false, "Recognise chords per frame instead of per beat")
	analyzeCmd.Flags().BoolVar(&noHMM, "no-hmm", false, "Pick the best template per frame without smoothing")
	analyzeCmd.Flags().BoolVar(&extended, "extended", false, "Also detect maj7, min7 and dom7 chords")
	analyzeCmd.Flags().StringVar(&saveName, "save", "", "Save the detected chords as a pattern with this name")
	analyzeCmd.Flags().StringSliceVar(&saveTags, "tags", nil, "Tags for --save")
	analyzeCmd.Flags().StringVar(&analyzeMIDI, "midi", "", "Export the detected chords to this MIDI file")

	patternsListCmd.Flags().StringVar(&filterName, "name", "", "Only patterns whose name contains this text")
	patternsListCmd.Flags().StringSliceVar(&filterTags, "tag", nil, "Only patterns carrying one of these tags")

	generateCmd.Flags().StringVarP(&profileIn, "profile", "p", "", "Style profile JSON written by analyze")
	generateCmd.Flags().StringVarP(&keyName, "key", "k", "C", "Tonic when no profile is given")
	generateCmd.Flags().StringVarP(&modeName, "mode", "m", "major", "Mode when no profile is given (major, minor)")
	generateCmd.Flags().Float64Var(&tempo, "tempo", 0, "Tempo in BPM (default: profile tempo or the MIDI tempo from config)")
	generateCmd.Flags().Float64Var(&harmonic, "harmonic-rhythm", 0, "Harmonic rhythm of the profile (default: profile value or 1, one chord per bar)")
	generateCmd.Flags().IntVarP(&bars, "bars", "b", 0, "Number of 4/4 bars (default from config)")
	generateCmd.Flags().IntVar(&complexity, "complexity", -1, "0 for triads, 1 or more for sevenths (default from config)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default from config)")
	generateCmd.Flags().StringVar(&startChord, "start", "", "Starting Roman numeral (default: tonic)")
	generateCmd.Flags().Float64Var(&cadenceWeight, "cadence-weight", -1, "Probability of ending on the authentic cadence (default from config)")
	generateCmd.Flags().StringVar(&midiOut, "midi", "", "Export the progression to this MIDI file")
	generateCmd.Flags().StringVar(&saveName, "save", "", "Save the progression as a pattern with this name")
	generateCmd.Flags().StringSliceVar(&saveTags, "tags", nil, "Tags for --save")
}

// setup loads the configuration and configures the global logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	level, err := logging.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}

	// stdout carries command output (--json), so every log line goes to stderr
	logging.SetGlobalLogger(logging.NewWriterLogger(os.Stderr, os.Stderr, stderrIsTerminal()))
	logging.SetLevel(level)
	if noColor {
		logging.DisableColors()
	}
	cfg = loaded
	return nil
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if noBeatSync {
		cfg.Analysis.BeatSync = false
	}
	if noHMM {
		cfg.Analysis.UseHMM = false
	}
	if extended {
		cfg.Analysis.Extended = true
	}

	analyzer, err := analysis.NewAnalyzer(cfg, nil)
	if err != nil {
		return err
	}
	result, err := analyzer.AnalyzeFile(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printAnalysis(out, result)
	}

	if profileOut != "" {
		if err := writeJSONFile(profileOut, result.Profile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "profile written to %s\n", profileOut)
	}
	if analyzeMIDI != "" {
		if err := exportMIDI(analyzeMIDI, result.Chords, result.Profile.TempoBPM); err != nil {
			return err
		}
	}
	if saveName != "" {
		return savePattern(cmd, saveName, result.Profile, result.Chords)
	}
	return nil
}

func printAnalysis(out io.Writer, result *analysis.Result) {
	fmt.Fprintf(out, "Key:      %s", result.Key.Value.Key)
	if result.Key.FellBack {
		fmt.Fprintf(out, " (default: %s)", result.Key.Reason)
	}
	fmt.Fprintf(out, "\nTempo:    %.1f BPM", result.Beats.Value.TempoBPM)
	if result.Beats.FellBack {
		fmt.Fprintf(out, " (default: %s)", result.Beats.Reason)
	}
	fmt.Fprintf(out, "\nBeats:    %d\n", len(result.Beats.Value.Frames))
	fmt.Fprintf(out, "Rhythm:   %.2f beats per chord (%.2f by chroma change)\n", result.Profile.HarmonicRhythm, result.ChangeRhythm)
	fmt.Fprintf(out, "Chords:   %d\n", len(result.Chords))
	printChords(out, result.Chords)
}

func printChords(out io.Writer, chords []theory.Chord) {
	for _, c := range chords {
		fmt.Fprintf(out, "  %7.2f  %-7s %-6s %v\n", c.StartBeat, c.Label().Symbol(), c.Roman, c.DurationBeats)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	profile, err := generationProfile(cmd)
	if err != nil {
		return err
	}

	opts := generate.Options{
		Bars:       cfg.Generation.Bars,
		Complexity: cfg.Generation.Complexity,
		StartChord: startChord,
	}
	if cmd.Flags().Changed("bars") {
		if bars < config.MinBars || bars > config.MaxBars {
			return fmt.Errorf("--bars must be in [%d,%d], got %d", config.MinBars, config.MaxBars, bars)
		}
		opts.Bars = bars
	}
	if complexity >= 0 {
		opts.Complexity = complexity
	}
	runSeed := cfg.Generation.Seed
	if cmd.Flags().Changed("seed") {
		runSeed = seed
	}

	chords, err := generate.NewGenerator(nil).Generate(profile, opts, runSeed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %d bars, seed %d\n", profile.Key, opts.Bars, runSeed)
	printChords(out, chords)

	if midiOut != "" {
		if err := exportMIDI(midiOut, chords, profile.TempoBPM); err != nil {
			return err
		}
	}
	if saveName != "" {
		return savePattern(cmd, saveName, profile, chords)
	}
	return nil
}

// generationProfile reads --profile or builds one from --key and --mode, then
// applies the flag overrides
func generationProfile(cmd *cobra.Command) (generate.StyleProfile, error) {
	var profile generate.StyleProfile
	if profileIn != "" {
		data, err := os.ReadFile(profileIn)
		if err != nil {
			return profile, err
		}
		if err := json.Unmarshal(data, &profile); err != nil {
			return profile, fmt.Errorf("parse profile %s: %w", profileIn, err)
		}
	} else {
		key, err := theory.ParseKey(keyName, modeName)
		if err != nil {
			return profile, err
		}
		profile = generate.BuildProfile(key, cfg.MIDI.TempoBPM, nil, cfg.Generation.CadenceWeight)
	}

	if tempo > 0 {
		profile.TempoBPM = tempo
	}
	if profile.TempoBPM <= 0 {
		profile.TempoBPM = cfg.MIDI.TempoBPM
	}
	if harmonic > 0 {
		profile.HarmonicRhythm = harmonic
	}
	if cmd.Flags().Changed("cadence-weight") {
		profile.CadenceWeight = cadenceWeight
	}
	return profile, nil
}

func exportMIDI(path string, chords []theory.Chord, bpm float64) error {
	export := midifile.ExportConfig{
		TempoBPM:  cfg.MIDI.TempoBPM,
		Velocity:  cfg.MIDI.Velocity,
		Channel:   cfg.MIDI.Channel,
		Octave:    cfg.MIDI.Octave,
		TrackName: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	if bpm > 0 {
		export.TempoBPM = bpm
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return midifile.WriteFile(path, chords, export, nil)
}

func openStore() (*patterns.Store, error) {
	return patterns.NewStore(cfg.PatternsDir, nil)
}

func savePattern(cmd *cobra.Command, name string, profile generate.StyleProfile, chords []theory.Chord) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	record, err := store.Save(patterns.Record{
		Name:     name,
		TempoBPM: profile.TempoBPM,
		Key:      profile.Key,
		Tags:     saveTags,
		Chords:   chords,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved pattern %q as %s\n", record.Name, record.ID)
	return nil
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	records, err := store.Search(patterns.Query{Name: filterName, Tags: filterTags})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "no saved patterns")
		return nil
	}
	for _, r := range records {
		kind := "user"
		if r.Preset {
			kind = "preset"
		}
		fmt.Fprintf(out, "%s  %-24s %-9s %6.1f BPM  %2d chords  %-6s %s\n",
			r.ID, r.Name, r.Key, r.TempoBPM, len(r.Chords), kind, strings.Join(r.Tags, ","))
	}
	return nil
}

func runPatternsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	record, err := store.Load(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), record)
}

func runPatternsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func runPatternsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	record, err := store.Load(args[0])
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.ExportDir, fileSafe(record.Name)+".mid")
	if len(args) == 2 {
		path = args[1]
	}
	if err := exportMIDI(path, record.Chords, record.TempoBPM); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// fileSafe maps a pattern name to a file name. Letters, digits and hyphens are kept;
// runs of anything else become one underscore
func fileSafe(name string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	if b.Len() == 0 {
		return "pattern"
	}
	return b.String()
}

func runPatternsPresets(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	installed, err := store.InstallPresets()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "installed %d presets into %s\n", len(installed), store.Dir())
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
