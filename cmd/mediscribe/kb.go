package main

import (
	"github.com/spf13/cobra"

	"github.com/mediscribe/mediscribe/internal/kb"
)

var (
	kbSearchLimit  int
	kbListPassages bool
)

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbSearchCmd)

	kbListCmd.Flags().BoolVar(&kbListPassages, "passages", false, "Include every passage in the output")
	kbSearchCmd.Flags().IntVarP(&kbSearchLimit, "limit", "l", 10, "Maximum results")
}

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
	Long:  `Commands for listing and keyword-searching knowledge base passages.`,
}

// KBListResponse is the response for the kb list command.
type KBListResponse struct {
	Dir      string          `json:"dir"`
	Files    int             `json:"files"`
	Passages int             `json:"passages"`
	Sources  []kb.SourceStat `json:"sources"`
	Items    []kb.Passage    `json:"items,omitempty"`
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base files and passage counts",
	Args:  cobra.NoArgs,
	RunE:  runKBList,
}

func runKBList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	knowledge := mustLoadKB(cfg)
	catalog := mustOpenCatalog(cfg, knowledge)
	defer catalog.Close()

	count, err := catalog.Count()
	if err != nil {
		exitWithError(ExitError, "counting passages: %v", err)
	}
	sources, err := catalog.Sources()
	if err != nil {
		exitWithError(ExitError, "listing sources: %v", err)
	}
	if sources == nil {
		sources = []kb.SourceStat{}
	}

	var items []kb.Passage
	if kbListPassages {
		items, err = catalog.List()
		if err != nil {
			exitWithError(ExitError, "listing passages: %v", err)
		}
	}

	if humanOutput {
		outputHuman("%s: %d files, %d passages\n", cfg.KBDir, len(knowledge.Files), count)
		for _, s := range sources {
			outputHuman("  %-40s %d\n", s.Source, s.Passages)
		}
		for _, p := range items {
			outputHuman("%s#%d  %s\n", p.Source, p.ChunkIndex, truncateString(p.Text, PassageMaxLen))
		}
		return nil
	}
	return outputJSON(KBListResponse{
		Dir:      cfg.KBDir,
		Files:    len(knowledge.Files),
		Passages: count,
		Sources:  sources,
		Items:    items,
	})
}

// KBSearchResponse is the response for the kb search command.
type KBSearchResponse struct {
	Query   string       `json:"query"`
	Results []kb.Passage `json:"results"`
	Count   int          `json:"count"`
}

var kbSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over knowledge base passages",
	Long: `Keyword search over knowledge base passages using SQLite full-text search.

File names are searchable too: "heart failure" matches heart_failure.txt.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBSearch,
}

func runKBSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	knowledge := mustLoadKB(cfg)
	catalog := mustOpenCatalog(cfg, knowledge)
	defer catalog.Close()

	results, err := catalog.Search(args[0], kbSearchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	if results == nil {
		results = []kb.Passage{}
	}

	if humanOutput {
		if len(results) == 0 {
			outputHuman("No passages match %q.\n", args[0])
			return nil
		}
		for i, p := range results {
			outputHuman("%d. %s#%d\n   %s\n", i+1, p.Source, p.ChunkIndex, truncateString(p.Text, PassageMaxLen))
		}
		return nil
	}
	return outputJSON(KBSearchResponse{Query: args[0], Results: results, Count: len(results)})
}
