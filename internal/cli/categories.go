package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List memory categories",
		Run:   runCategories,
	}
	RootCmd.AddCommand(cmd)
}

func runCategories(cmd *cobra.Command, args []string) {
	mem, _, err := openMemory()
	if err != nil {
		exitErr("open store", err)
	}
	defer mem.Close()

	if _, err := mem.LoadAll(cmd.Context()); err != nil {
		exitErr("load", err)
	}

	cats := mem.Repo().Categories()
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })

	b, _ := json.Marshal(cats)
	fmt.Println(string(b))
}
