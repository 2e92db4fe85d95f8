package main

import (
	"fmt"
	"io"
	"os"

	"github.com/inklog/internal/db"
	"github.com/inklog/internal/micropub"
	"github.com/inklog/internal/service"
	"github.com/spf13/cobra"
)

var (
	databasePath string
	clientID     string
)

// rootCmd 从标准输入读取一条 JSON h-entry 并写入数据库
var rootCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON h-entry from stdin into the post database",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		input, err := micropub.ParseJSON(raw)
		if err != nil {
			return fmt.Errorf("parse entry: %w", err)
		}
		input.ClientID = clientID

		if err := db.Init(databasePath); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		posts := service.NewPostService(db.DB)
		post, err := posts.Create(input, raw)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), post.Slug)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&databasePath, "database", "inklog.db", "path to the sqlite database file")
	rootCmd.Flags().StringVar(&clientID, "client-id", "", "client id to record on the imported post")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
