// Package main is the entry point for the measureedit CLI
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/Southclaws/fault/fmsg"
	"github.com/james-see/measureedit/pkg/api"
	"github.com/james-see/measureedit/pkg/config"
	"github.com/james-see/measureedit/pkg/converter"
	"github.com/james-see/measureedit/pkg/score"
	"github.com/james-see/measureedit/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile    string
	timeSignature string
	measureWidth  float64
	clefName      string
	tempo         float64
	extraMeasures int
	verbose       bool
	styled        bool
	serverPort    int
	edits         []edit
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if issue := fmsg.GetIssue(err); issue != "" {
			fmt.Fprintf(os.Stderr, "%s (%v)\n", issue, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "measureedit",
	Short: "Edit measures of notation and export them",
	Long: `measureedit keeps every measure of a score exactly full: notes fill rest
slots, shortening a note pads with rests and lengthening it absorbs the rests
that follow.

Events are addressed as <measure>:<event position>, both starting at 0.

Examples:
  measureedit show --add 0:0:C/4,E/4:q --dur 0:1:8
  measureedit export song.mid --measures 1 --add 1:0:G/4:q
  measureedit export song.pdf --config score.yaml
  measureedit tui
  measureedit serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	SilenceUsage:  true,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Apply edits and print the staves",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Apply edits and write the score, format by extension",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal editor",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.StringVarP(&timeSignature, "time-signature", "t", "", "Time signature, e.g. 3/4 or C")
	flags.Float64VarP(&measureWidth, "width", "w", 0, "Measure width in points")
	flags.StringVar(&clefName, "clef", "", "Clef (treble, bass, alto, tenor, percussion)")
	flags.Float64Var(&tempo, "tempo", 0, "Tempo in bpm for MIDI export")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every edit to stderr")

	// Edits shared by show and export
	for _, cmd := range []*cobra.Command{showCmd, exportCmd} {
		cmd.Flags().Var(&editFlag{kind: "add", edits: &edits}, "add", "Add pitches to an event, m:e:C/4,E/4:q (repeatable)")
		cmd.Flags().Var(&editFlag{kind: "dur", edits: &edits}, "dur", "Change an event duration, m:e:8 (repeatable)")
		cmd.Flags().IntVarP(&extraMeasures, "measures", "m", 0, "Measures to append before editing")
	}
	showCmd.Flags().BoolVar(&styled, "color", false, "Color the staves")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")

	// Add commands
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads --config and applies the global flags that were set
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("time-signature") {
		cfg.TimeSignature = timeSignature
	}
	if flags.Changed("width") {
		cfg.MeasureWidth = measureWidth
	}
	if flags.Changed("clef") {
		cfg.Clef = clefName
	}
	if flags.Changed("tempo") {
		cfg.Tempo = tempo
	}
	if flags.Changed("port") {
		cfg.Server.Port = strconv.Itoa(serverPort)
	}
	return cfg, cfg.Validate()
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// buildScore creates the score and runs the appends and edits in order
func buildScore(cfg config.Config) (*score.Score, error) {
	s, err := api.NewScore(cfg, score.WithLogger(logger()))
	if err != nil {
		return nil, err
	}
	for range extraMeasures {
		if _, err := s.AddMeasure(); err != nil {
			return nil, err
		}
	}
	for _, e := range edits {
		if err := e.apply(s); err != nil {
			return nil, fmt.Errorf("--%s %s: %w", e.kind, e, err)
		}
	}
	return s, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := buildScore(cfg)
	if err != nil {
		return err
	}

	out, err := converter.Text(s, styled, "")
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	output := args[0]
	format := converter.DetectFormat(output)
	if format == converter.FormatUnknown {
		return fmt.Errorf("%w: %s (supported: %v)", converter.ErrUnsupportedFormat, output, converter.New(converter.DefaultOptions()).SupportedFormats())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := buildScore(cfg)
	if err != nil {
		return err
	}

	conv := converter.New(converter.Options{Tempo: cfg.Tempo})
	fmt.Printf("Exporting %d measure(s) -> %s\n", s.Len(), output)
	if err := conv.ExportFile(s, output); err != nil {
		return err
	}
	fmt.Println("Export complete!")
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return tui.Run(cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %s...\n", cfg.Server.Port)
	return api.StartServer(cfg)
}
