package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boardroom-backend/internal/di"
	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
	"boardroom-backend/internal/service/prompt"
)

func newMemoryCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Print the memory profile grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			container, err := di.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer container.Shutdown(cmd.Context())

			categories, err := container.MemoryService.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printProfile(cmd.OutOrStdout(), format, categories)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}

func printProfile(w io.Writer, format string, categories []domain.MemoryCategory) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(categories)
	case "text":
		if len(categories) == 0 {
			_, err := fmt.Fprintln(w, "No memories stored.")
			return err
		}
		for _, c := range categories {
			if _, err := fmt.Fprintf(w, "%s: %s\n", prompt.Heading(c.Name), strings.Join(c.Values, ", ")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newSeedMemoryCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		record domain.MemoryRecord
	)

	cmd := &cobra.Command{
		Use:   "seed-memory",
		Short: "Add rows to the memory profile",
		Long: "Adds one row from --category/--key/--value, or every row of a YAML file given " +
			"with --file (a list of {category, key, value}).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := seedRecords(file, record)
			if err != nil {
				return err
			}

			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			store, err := di.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			writer, ok := store.(repository.MemoryWriter)
			if !ok {
				return fmt.Errorf("store driver %q cannot add memories", cfg.Store.Driver)
			}
			for _, r := range records {
				if err := writer.AddMemory(cmd.Context(), r); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %d memory rows.\n", len(records))
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file of memory rows")
	cmd.Flags().StringVar(&record.Category, "category", "", "Category of a single row")
	cmd.Flags().StringVar(&record.Key, "key", "", "Key of a single row")
	cmd.Flags().StringVar(&record.Value, "value", "", "Value of a single row")
	cmd.MarkFlagsMutuallyExclusive("file", "category")
	return cmd
}

func seedRecords(file string, single domain.MemoryRecord) ([]domain.MemoryRecord, error) {
	if file == "" {
		if single.Category == "" || single.Value == "" {
			return nil, fmt.Errorf("--category and --value are required without --file")
		}
		return []domain.MemoryRecord{single}, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	var records []domain.MemoryRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	for i, r := range records {
		if r.Category == "" || r.Value == "" {
			return nil, fmt.Errorf("row %d of %s needs a category and a value", i, file)
		}
	}
	return records, nil
}
