package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keepsake-ai/keepsake/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [summary]",
		Short: "Store a memory item",
		Long:  "Store a memory item. The summary can be a positional arg or piped via stdin.",
		Run:   runRemember,
	}

	cmd.Flags().String("category", "", "Category name to file this memory under")
	cmd.Flags().String("type", model.MemoryTypeKnowledge, "Memory type")
	cmd.Flags().String("resource", "", "Resource id this memory was derived from")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	memType, _ := cmd.Flags().GetString("type")
	resourceID, _ := cmd.Flags().GetString("resource")

	// Summary: positional arg first, then stdin.
	var summary string
	if len(args) > 0 {
		summary = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			summary = string(b)
		}
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		exitErr("remember", fmt.Errorf("summary is required (positional arg or stdin)"))
	}

	mem, cfg, err := openMemory()
	if err != nil {
		exitErr("open store", err)
	}
	defer mem.Close()
	ctx := cmd.Context()

	if _, err := mem.LoadAll(ctx); err != nil {
		exitErr("load", err)
	}

	var vec model.Vector
	if embedder := openEmbedder(cfg); embedder != nil {
		vec, err = embedder.Embed(ctx, summary)
		if err != nil {
			exitErr("embed", err)
		}
	}

	item := mem.CreateItem(resourceID, memType, summary, vec)
	if err := mem.PersistItem(ctx, item); err != nil {
		exitErr("persist item", err)
	}

	out := struct {
		Item       *model.MemoryItem `json:"item"`
		CategoryID string            `json:"category_id,omitempty"`
	}{Item: item}

	if category != "" {
		cat := mem.GetOrCreateCategory(category, "", nil)
		rel := mem.LinkItemCategory(item.ID, cat.ID)
		if err := mem.PersistCategory(ctx, cat); err != nil {
			exitErr("persist category", err)
		}
		if err := mem.PersistRelation(ctx, rel); err != nil {
			exitErr("persist relation", err)
		}
		out.CategoryID = cat.ID
	}

	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}
