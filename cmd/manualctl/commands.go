package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/ashureev/ajiwai-labs/internal/manual"
	"github.com/spf13/cobra"
)

var (
	chunksJSON  bool
	searchK     int
	searchVec   bool
	showContext bool
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Show how the manual is split",
	Args:  cobra.NoArgs,
	RunE:  runChunks,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the chunks retrieved for a query",
	Long:  "Show the chunks retrieved for a query. Lexical search runs offline; --vector embeds through the configured OpenAI account.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question as the shop manager would",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output as JSON")
	searchCmd.Flags().IntVarP(&searchK, "top", "k", manual.DefaultTopK, "number of chunks to return")
	searchCmd.Flags().BoolVar(&searchVec, "vector", false, "use embedding similarity instead of lexical search")
	askCmd.Flags().BoolVar(&showContext, "context", false, "print the manual excerpt used for the answer")

	rootCmd.AddCommand(chunksCmd, searchCmd, askCmd)
}

func runChunks(cmd *cobra.Command, _ []string) error {
	chunks, err := manual.LoadChunks(resolveManualPath())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if chunksJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRUNES\tPREVIEW")
	for _, c := range chunks {
		fmt.Fprintf(w, "%d\t%d\t%s\n", c.ID, utf8.RuneCountInString(c.Text), preview(c.Text, 40))
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchK < 1 {
		return fmt.Errorf("--top must be at least 1, got %d", searchK)
	}
	ctx := cmd.Context()

	backend := config.RetrievalLexical
	var embedder llm.Embedder
	if searchVec {
		clients, err := loadClients()
		if err != nil {
			return err
		}
		if clients.Embedder == nil {
			return fmt.Errorf("provider %q has no embeddings endpoint", clients.Provider)
		}
		backend = config.RetrievalVector
		embedder = clients.Embedder
	}

	r, err := manual.Build(ctx, config.ManualConfig{Path: resolveManualPath(), Backend: backend}, embedder)
	if err != nil {
		return err
	}

	chunks, err := r.Search(ctx, args[0], searchK)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, c := range chunks {
		fmt.Fprintf(out, "--- #%d (chunk %d)\n%s\n", i+1, c.ID, c.Text)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if manualPath != "" {
		cfg.Manual.Path = manualPath
	}

	clients, err := llm.New(cfg.LLM, nil)
	if err != nil {
		return err
	}
	r, err := manual.Build(ctx, cfg.Manual, clients.Embedder)
	if err != nil {
		return err
	}

	res, err := manual.NewService(r, clients.Completer, nil).Answer(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Answer)
	if showContext {
		fmt.Fprintf(out, "\n【マニュアルの抜粋】\n%s\n", res.Context)
	}
	return nil
}

func loadClients() (*llm.Clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return llm.New(cfg.LLM, nil)
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

