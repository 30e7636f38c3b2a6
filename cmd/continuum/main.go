package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/continuum/internal/api"
	"github.com/pbaille/continuum/internal/classifier"
	"github.com/pbaille/continuum/internal/config"
	"github.com/pbaille/continuum/internal/domain"
	"github.com/pbaille/continuum/internal/insight"
	"github.com/pbaille/continuum/internal/journal"
	"github.com/pbaille/continuum/internal/logging"
	"github.com/pbaille/continuum/internal/metrics"
	"github.com/pbaille/continuum/internal/sentiment"
	"github.com/pbaille/continuum/internal/store"
)

var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "continuum",
		Short:        "Decision journal with pattern, bias and sentiment insights",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.continuum/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides storage.path)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *store.SQLite
	metrics *metrics.Metrics
	journal *journal.Journal
}

func (a *app) Close() {
	a.db.Close()
	a.logger.Sync()
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := store.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	records := store.NewRecordStore(db,
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(logger.Named("store")),
	)
	analyzer := insight.NewAnalyzer(cfg.Insights.Rules, sentiment.New(cfg.Sentiment))
	gen := insight.NewGenerator(analyzer,
		insight.WithLatency(cfg.Insights.Latency),
		insight.WithLogger(logger.Named("insight")),
	)
	m := metrics.New()

	j := journal.New(records,
		journal.WithClassifier(classifier.New(cfg.Tagging.Rules)),
		journal.WithGenerator(gen),
		journal.WithMetrics(m),
		journal.WithLogger(logger.Named("journal")),
		journal.WithItemsPerPage(cfg.Query.ItemsPerPage),
	)

	return &app{cfg: cfg, logger: logger, db: db, metrics: m, journal: j}, nil
}

func addCmd() *cobra.Command {
	var (
		draft   domain.Draft
		tags    string
		emotion int
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Capture a new decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Title = strings.Join(args, " ")
			draft.Tags = domain.ParseTags(tags)
			if cmd.Flags().Changed("emotion") {
				draft.EmotionalState = &emotion
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.journal.Capture(draft)
			if err != nil {
				return err
			}

			fmt.Printf("Captured decision: %d\n", d.ID)
			fmt.Printf("Title: %s\n", truncate(d.Title, 80))
			if len(d.Tags) > 0 {
				fmt.Printf("Tags:  %s\n", strings.Join(d.Tags, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Intent, "intent", "", "what you are trying to achieve")
	cmd.Flags().StringVar(&draft.Constraints, "constraints", "", "limits on the decision")
	cmd.Flags().StringVar(&draft.Alternatives, "alternatives", "", "options considered")
	cmd.Flags().StringVar(&draft.FinalDecision, "decision", "", "what you decided")
	cmd.Flags().StringVar(&draft.Reasoning, "reasoning", "", "why you decided it")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().IntVar(&emotion, "emotion", domain.DefaultEmotionalState, "emotional state from 0 to 10")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		timeframe string
		tag       string
		search    string
		page      int
		perPage   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decisions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := domain.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.journal.Search(domain.Filter{Timeframe: tf, Tag: tag}, search, page, perPage)
			if err != nil {
				return err
			}

			if result.Total == 0 {
				fmt.Println("No decisions found. Use 'continuum add' to capture one.")
				return nil
			}

			for _, d := range result.Items {
				fmt.Printf("%d  %-10s  %s\n", d.ID, d.Time().Format("2006-01-02"), truncate(d.Title, 60))
			}
			if result.TotalPages > 1 {
				fmt.Printf("\nPage %d of %d (%d decisions)\n", result.Page, result.TotalPages, result.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "all", "all, week, month or year")
	cmd.Flags().StringVar(&tag, "tag", "", "only decisions with this tag")
	cmd.Flags().StringVarP(&search, "search", "s", "", "search title, intent, decision, reasoning and tags")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", 0, "decisions per page (default from config)")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show decision details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.journal.Get(id)
			if err != nil {
				return err
			}
			notes, err := a.journal.Review(id)
			if err != nil {
				return err
			}

			fmt.Printf("ID:        %d\n", d.ID)
			fmt.Printf("Date:      %s\n", d.Date)
			fmt.Printf("Title:     %s\n", d.Title)
			fmt.Printf("Intent:    %s\n", d.Intent)
			fmt.Printf("Constraints: %s\n", d.Constraints)
			if d.Alternatives != "" {
				fmt.Printf("Alternatives: %s\n", d.Alternatives)
			}
			fmt.Printf("Decision:  %s\n", d.FinalDecision)
			fmt.Printf("Reasoning: %s\n", d.Reasoning)
			fmt.Printf("Emotion:   %d/10\n", d.EmotionalState)

			if len(d.Tags) > 0 {
				fmt.Printf("\nTags:\n")
				for _, t := range d.Tags {
					fmt.Printf("  - %s\n", t)
				}
			}
			if len(notes) > 0 {
				fmt.Printf("\nReview:\n")
				for _, n := range notes {
					fmt.Printf("  * %s\n", n)
				}
			}
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var (
		title, intent, constraints, alternatives, decision, reasoning, tags string
		emotion                                                             int
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a decision; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch domain.Patch
			flags := cmd.Flags()
			set := func(name string, dst **string, val *string) {
				if flags.Changed(name) {
					*dst = val
				}
			}
			set("title", &patch.Title, &title)
			set("intent", &patch.Intent, &intent)
			set("constraints", &patch.Constraints, &constraints)
			set("alternatives", &patch.Alternatives, &alternatives)
			set("decision", &patch.FinalDecision, &decision)
			set("reasoning", &patch.Reasoning, &reasoning)
			if flags.Changed("emotion") {
				patch.EmotionalState = &emotion
			}
			if flags.Changed("tags") {
				parsed := domain.ParseTags(tags)
				patch.Tags = &parsed
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.journal.Edit(id, patch)
			if err != nil {
				return err
			}
			fmt.Printf("Updated decision: %d (%s)\n", d.ID, truncate(d.Title, 60))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&intent, "intent", "", "new intent")
	cmd.Flags().StringVar(&constraints, "constraints", "", "new constraints")
	cmd.Flags().StringVar(&alternatives, "alternatives", "", "new alternatives")
	cmd.Flags().StringVar(&decision, "decision", "", "new final decision")
	cmd.Flags().StringVar(&reasoning, "reasoning", "", "new reasoning")
	cmd.Flags().StringVar(&tags, "tags", "", "replace tags (comma-separated)")
	cmd.Flags().IntVar(&emotion, "emotion", domain.DefaultEmotionalState, "new emotional state from 0 to 10")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.journal.Delete(id); err != nil {
				return err
			}
			fmt.Printf("Deleted decision: %d\n", id)
			return nil
		},
	}
}

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "insights [patterns|biases|improvements|sentiment]",
		Short:     "Analyze recent decisions",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"patterns", "biases", "improvements", "sentiment"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := insight.ParseKind(args[0])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Print("Analyzing... ")
			insights, err := a.journal.Insights(cmd.Context(), kind)
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Println("done")
			fmt.Printf("\n%s\n", kind.Title())

			if len(insights) == 0 {
				fmt.Println("No insights yet. Capture a few more decisions.")
				return nil
			}
			for _, in := range insights {
				fmt.Printf("\n[%s] %s (%d%% confidence)\n", in.Severity, in.Title, in.Confidence)
				fmt.Printf("  %s\n", in.Message)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.journal.Overview()
			if err != nil {
				return err
			}

			fmt.Printf("Total decisions:   %d\n", o.Quick.Total)
			fmt.Printf("This month:        %d\n", o.Quick.ThisMonth)
			fmt.Printf("Average emotion:   %.1f/10\n", o.Quick.AverageEmotion)
			fmt.Printf("Time-related:      %d\n", o.Statistics.TimeRelated)
			fmt.Printf("Financial:         %d\n", o.Statistics.Financial)
			fmt.Printf("Learning:          %d\n", o.Statistics.Learning)

			fmt.Printf("\nLast 6 months:\n")
			for _, m := range o.Monthly {
				fmt.Printf("  %s %4d  %s\n", m.Label, m.Count, strings.Repeat("#", m.Count))
			}

			if len(o.Recent) > 0 {
				fmt.Printf("\nRecent:\n")
				for _, d := range o.Recent {
					fmt.Printf("  %d  %s\n", d.ID, truncate(d.Title, 60))
				}
			}
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.journal.Tags()
			if err != nil {
				return err
			}

			if len(tags) == 0 {
				fmt.Println("No tags yet. Tags come from your input and automatic classification.")
				return nil
			}
			for _, t := range tags {
				fmt.Printf("%-20s %d\n", t.Tag, t.Count)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all decisions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			name, data, err := a.journal.Export()
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default continuum-decisions-<date>.json)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import decisions from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.journal.Import(data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d new decisions\n", added)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.New(a.journal, a.metrics, a.logger.Named("api"), addr)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decision id: %s", s)
	}
	return id, nil
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
