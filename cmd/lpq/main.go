package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvpi/lpsearch"
	"github.com/lvpi/lpsearch/internal/version"
)

var jsonOutput bool

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lpq",
		Short: "Translate and run library search forms",
		Long: `lpq compiles search-box forms into Elasticsearch queries
and optionally runs them against a cluster.`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(versionCmd(), translateCmd(), searchCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), "lpq", version.String())
		},
	}
}

type fieldFlags struct {
	title, body         string
	boost               float64
	sentence, paragraph string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title-field", "", "Title field (default book_title)")
	cmd.Flags().StringVar(&f.body, "body-field", "", "Body field (default section_text)")
	cmd.Flags().Float64Var(&f.boost, "title-boost", 0, "Title boost for title-and-body searches (default 2)")
	cmd.Flags().StringVar(&f.sentence, "sentence-break", "", "Sentence boundary token")
	cmd.Flags().StringVar(&f.paragraph, "paragraph-break", "", "Paragraph boundary token")
}

func (f *fieldFlags) options() []lpsearch.Option {
	return []lpsearch.Option{
		lpsearch.WithFields(f.title, f.body, f.boost),
		lpsearch.WithBoundaries(f.sentence, f.paragraph),
	}
}

func translateCmd() *cobra.Command {
	var file string
	var fields fieldFlags

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the Elasticsearch query for a form",
		Example: `  lpq translate -f form.json
  echo '{"searchType":1,"queryData":{"queryText":"合同法"}}' | lpq translate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := readSpec(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			q, err := lpsearch.Translate(spec, fields.options()...)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]any{"kind": spec.Kind(), "query": q})
				return nil
			}
			printJSON(cmd.OutOrStdout(), q)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Form JSON file, - for stdin")
	fields.register(cmd)
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		file     string
		esAddrs  []string
		index    string
		username string
		password string
		page     int
		size     int
		timeout  time.Duration
		fields   fieldFlags
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a form against Elasticsearch and print the hits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := readSpec(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			opts := append(fields.options(),
				lpsearch.WithElasticsearch(esAddrs...),
				lpsearch.WithIndex(index),
				lpsearch.WithReadinessTimeout(timeout),
			)
			if username != "" {
				opts = append(opts, lpsearch.WithBasicAuth(username, password))
			}
			client, err := lpsearch.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			result, err := client.Search(ctx, spec, lpsearch.SearchOptions{Page: page, Size: size})
			if err != nil {
				return err
			}

			if jsonOutput {
				printJSON(cmd.OutOrStdout(), result)
				return nil
			}
			printPage(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Form JSON file, - for stdin")
	cmd.Flags().StringSliceVar(&esAddrs, "es", []string{"http://localhost:9200"}, "Elasticsearch address(es)")
	cmd.Flags().StringVar(&index, "index", "books", "Index to search")
	cmd.Flags().StringVar(&username, "username", "", "Elasticsearch username")
	cmd.Flags().StringVar(&password, "password", os.Getenv("LPQ_ES_PASSWORD"), "Elasticsearch password")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 8, "Page size")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connect and search timeout")
	fields.register(cmd)
	return cmd
}

// readSpec parses a form from file, or from stdin when file is "-". Empty input matches everything.
func readSpec(stdin io.Reader, file string) (lpsearch.Spec, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" || file == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return lpsearch.Spec{}, fmt.Errorf("read form: %w", err)
	}
	return lpsearch.ParseForm(data)
}

func printPage(w io.Writer, p *lpsearch.Page) {
	fmt.Fprintf(w, "%d hits (page %d/%d, %dms)\n", p.Total, p.Page, p.Pages, p.TookMS)
	for i, h := range p.Hits {
		title := h.ID
		var src map[string]any
		if json.Unmarshal(h.Source, &src) == nil {
			if t, ok := src["book_title"].(string); ok && t != "" {
				title = t
			}
		}
		fmt.Fprintf(w, "%3d. %s  (%.2f)\n", (p.Page-1)*p.Size+i+1, title, h.Score)
		for field, frags := range h.Highlight {
			fmt.Fprintf(w, "     %s: %s\n", field, strings.Join(frags, " … "))
		}
	}
	for _, f := range p.Facets {
		if len(f.Buckets) == 0 {
			continue
		}
		parts := make([]string, len(f.Buckets))
		for i, b := range f.Buckets {
			parts[i] = fmt.Sprintf("%s(%d)", b.Value, b.Count)
		}
		fmt.Fprintf(w, "  %s: %s\n", f.Attribute, strings.Join(parts, ", "))
	}
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
