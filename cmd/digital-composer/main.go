// Package main is the entry point for the digital-composer CLI
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Kingdread/digital-composer/pkg/api"
	"github.com/Kingdread/digital-composer/pkg/composer"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	"github.com/Kingdread/digital-composer/pkg/tui"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	length     int
	degree     int
	voices     int
	seed       uint64
	onStall    string
	logLevel   string
	serverPort int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "digital-composer"})

func main() {
	if err := rootCmd.Execute(); err != nil {
		printErrorStack(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "digital-composer [flags] <input> <track>",
	Short: "Compose new melodies from the tracks of MIDI files",
	Long: `digital-composer learns which pitch follows which in one track of a
MIDI file and writes a new melody in the same style.

The track index is zero-based. The degree is the number of preceding
notes that decide the next one; higher degrees stay closer to the input.

Examples:
  digital-composer song.mid 1
  digital-composer song.mid 1 -d 3 -l 200 -o out.mid
  digital-composer inspect song.mid
  digital-composer tui
  digital-composer serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:              cobra.ExactArgs(2),
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	RunE:              runCompose,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "List the tracks of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var notesCmd = &cobra.Command{
	Use:   "notes <input> <track>",
	Short: "Print the pitches of a track's note-on events",
	Args:  cobra.ExactArgs(2),
	RunE:  runNotes,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
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
	defaults := composer.DefaultOptions()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Composition flags, shared with the TUI as its starting values
	for _, cmd := range []*cobra.Command{rootCmd, tuiCmd} {
		cmd.Flags().IntVarP(&length, "length", "l", defaults.Length, "Number of notes to compose")
		cmd.Flags().IntVarP(&degree, "degree", "d", defaults.Degree, "Number of preceding notes the next one depends on")
		cmd.Flags().IntVar(&voices, "voices", defaults.Voices, "Number of melodies, each written as its own track")
		cmd.Flags().Uint64Var(&seed, "seed", defaults.Seed, "Random seed (0 picks one from the clock)")
		cmd.Flags().StringVar(&onStall, "on-stall", string(defaults.OnStall), "What to do when a phrase has no continuation (fail, reseed)")
	}
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "composition.mid", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogger(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(level)
	return nil
}

func parseTrack(arg string) (uint16, error) {
	track, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid track index %q: %w", arg, err)
	}
	return uint16(track), nil
}

func options(track uint16) (composer.Options, error) {
	policy, err := composer.ParseStallPolicy(onStall)
	if err != nil {
		return composer.Options{}, err
	}
	opts := composer.Options{
		Track:   track,
		Degree:  degree,
		Length:  length,
		Voices:  voices,
		Seed:    seed,
		OnStall: policy,
	}
	return opts, opts.Validate()
}

func runCompose(cmd *cobra.Command, args []string) error {
	input := args[0]
	track, err := parseTrack(args[1])
	if err != nil {
		return err
	}
	opts, err := options(track)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("Reading %s...", input))
	if err := composer.New(opts, logger).ComposeFile(input, outputFile); err != nil {
		return err
	}
	logger.Info("Composition complete", "output", outputFile, "notes", opts.Length, "voices", opts.Voices)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	tracks, err := midifile.Inspect(data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, t := range tracks {
		fmt.Fprintln(out, t.String())
	}
	return nil
}

func runNotes(cmd *cobra.Command, args []string) error {
	track, err := parseTrack(args[1])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	notes, err := midifile.ReadNotes(data, track)
	if err != nil {
		return err
	}
	logger.Debug("decoded track", "track", track, "notes", len(notes))

	fields := make([]string, len(notes))
	for i, n := range notes {
		fields[i] = strconv.Itoa(int(n))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, " "))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := options(0)
	if err != nil {
		return err
	}
	// Log lines would tear the alternate screen
	logger.SetOutput(io.Discard)
	return tui.Run(opts, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info(fmt.Sprintf("Swagger docs available at http://localhost:%d/swagger/index.html", serverPort))
	return api.StartServer(serverPort, logger)
}

// errorStack lists err and each of its causes, with the text each cause
// already contributes to its parent's message removed.
func errorStack(err error) []string {
	var lines []string
	for err != nil {
		next := errors.Unwrap(err)
		msg := err.Error()
		if next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		lines = append(lines, msg)
		err = next
	}
	return lines
}

func printErrorStack(w io.Writer, err error) {
	for i, line := range errorStack(err) {
		if i == 0 {
			fmt.Fprintf(w, "Error: %s\n", line)
		} else {
			fmt.Fprintf(w, "Caused by: %s\n", line)
		}
	}
}
