package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keepsake-ai/keepsake/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store health and entity counts",
		Run:   runStatus,
	}
	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	mem, _, err := openMemory()
	if err != nil {
		exitErr("open store", err)
	}
	defer mem.Close()
	ctx := cmd.Context()

	health := mem.Health(ctx)
	if _, err := mem.LoadAll(ctx); err != nil {
		exitErr("load", err)
	}
	resources, categories, items, relations := mem.Repo().Counts()

	out := struct {
		Health     memory.Health `json:"health"`
		Resources  int           `json:"resources"`
		Categories int           `json:"categories"`
		Items      int           `json:"items"`
		Relations  int           `json:"relations"`
	}{health, resources, categories, items, relations}

	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}
