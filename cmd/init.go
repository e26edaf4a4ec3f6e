package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/config"
	"github.com/chriserin/strparse/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize strparse in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// .strparse/ directory
	_, err := os.Stat(config.DefaultDir)
	dirExists := err == nil
	if err := os.MkdirAll(config.DefaultDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.DefaultDir, err)
	}
	if dirExists {
		fmt.Fprintf(w, "%s/ already exists\n", config.DefaultDir)
	} else {
		fmt.Fprintf(w, "%s/ created\n", config.DefaultDir)
	}

	// configuration
	if _, err := os.Stat(config.DefaultPath); err == nil {
		fmt.Fprintf(w, "%s already exists\n", config.DefaultPath)
	} else {
		if err := config.Write(config.DefaultPath, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s created\n", config.DefaultPath)
	}

	// database
	_, err = os.Stat(config.DefaultDatabase)
	dbExists := err == nil
	sqlDB, err := db.Open(config.DefaultDatabase)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintf(w, "%s already exists\n", config.DefaultDatabase)
	} else {
		fmt.Fprintf(w, "%s created\n", config.DefaultDatabase)
	}

	// gitignore
	msgs, err := ensureGitignore(config.DefaultDatabase)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
