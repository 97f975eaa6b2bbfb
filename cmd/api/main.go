package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"gifstore/cmd/api/cli"
)

var (
	version = "0.1.0-dev"
	commit  = "main"
)

// @title GifStore API
// @version 1.0
// @description Upload, tag, share and search GIF files.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	root := cli.NewRootCommand(cli.VersionInfo{Version: version, Commit: commit})

	root.AddCommand(cli.NewServeCommand())
	root.AddCommand(cli.NewMigrateCommand())
	root.AddCommand(cli.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
