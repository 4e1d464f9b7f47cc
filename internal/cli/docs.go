package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List registered documents",
	RunE:  runDocs,
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <document-id>",
	Short: "Delete a document and everything derived from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsRm,
}

var (
	chunksLimit  int
	chunksOffset int
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <document-id>",
	Short: "List a document's chunks in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsRmCmd)
	rootCmd.AddCommand(chunksCmd)
	chunksCmd.Flags().IntVar(&chunksLimit, "limit", 20, "max chunks to show (0 = all)")
	chunksCmd.Flags().IntVar(&chunksOffset, "offset", 0, "chunks to skip")
}

func runDocs(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.ListDocuments()
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s  %-6s  %s\n", d.ID, d.Kind, d.Name)
	}
	return nil
}

func runDocsRm(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.GetDocument(args[0]); err != nil {
		return err
	}
	if err := st.DeleteDocument(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s. Run 'mediamind rebuild' to refresh the search index.\n", args[0])
	return nil
}

func runChunks(cmd *cobra.Command, args []string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	chunks, err := st.GetChunksByDocument(args[0], chunksLimit, chunksOffset)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("No chunks.")
		return nil
	}
	for _, c := range chunks {
		fmt.Printf("[%d] %s (chars %d-%d)\n", c.Index, c.ID, c.StartChar, c.EndChar)
		fmt.Printf("    %s\n", preview(c.Text, 120))
	}
	return nil
}
