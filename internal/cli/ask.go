package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"boardroom-backend/internal/di"
	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/service/boardroom"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		transcriptPath string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message to the boardroom",
		Long: "Sends one message through the dispatcher. Mention @claude or @gpt to address one " +
			"provider; otherwise both answer. With --transcript the conversation is read from " +
			"and written back to a JSON file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q", format)
			}

			transcript, err := readTranscript(transcriptPath)
			if err != nil {
				return err
			}

			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			container, err := di.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer container.Shutdown(cmd.Context())

			result, err := container.Orchestrator.Dispatch(cmd.Context(), transcript, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if transcriptPath != "" {
				if err := writeTranscript(transcriptPath, result.Transcript); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "JSON transcript file to continue and update")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}

// readTranscript loads a transcript file. A missing file is an empty
// conversation.
func readTranscript(path string) (domain.Transcript, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var transcript domain.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	for i, t := range transcript {
		if !t.Sender.Valid() {
			return nil, fmt.Errorf("transcript turn %d has unknown sender %q", i, t.Sender)
		}
	}
	return transcript, nil
}

func writeTranscript(path string, transcript domain.Transcript) error {
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// printResult prints the turns the dispatch added.
func printResult(w io.Writer, format string, result boardroom.Result) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	for _, t := range result.Turns {
		if _, err := fmt.Fprintf(w, "%s: %s\n", t.Sender.Label(), t.Text); err != nil {
			return err
		}
	}
	return nil
}
