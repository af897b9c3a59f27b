package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document to the backend",
	Long: `Upload a document for the backend to index. Accepted types: .pdf,
.doc, .docx, .txt, up to 5 MiB. The file is validated locally before any
bytes are sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := requireAuth(cmd.Context(), a); err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	result, err := a.API.UploadFile(cmd.Context(), filepath.Base(path), f, info.Size())
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %s (%s)\n", result.FileInfo.Filename, humanize.Bytes(uint64(result.FileInfo.Size)))
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}
