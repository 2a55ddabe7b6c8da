package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keepsake-ai/keepsake/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Register an external resource",
		Run:   runResource,
	}

	cmd.Flags().String("url", "", "Resource URL (required)")
	cmd.Flags().String("path", "", "Local path of the downloaded artifact")
	cmd.Flags().String("modality", model.ModalityText, "Modality: text or image")

	cmd.MarkFlagRequired("url")

	RootCmd.AddCommand(cmd)
}

func runResource(cmd *cobra.Command, args []string) {
	url, _ := cmd.Flags().GetString("url")
	localPath, _ := cmd.Flags().GetString("path")
	modality, _ := cmd.Flags().GetString("modality")

	mem, _, err := openMemory()
	if err != nil {
		exitErr("open store", err)
	}
	defer mem.Close()

	res := mem.CreateResource(url, modality, localPath)
	if err := mem.PersistResource(cmd.Context(), res); err != nil {
		exitErr("persist resource", err)
	}

	b, _ := json.Marshal(res)
	fmt.Println(string(b))
}
