// Command rangedl is a resumable, range-based HTTP downloader with a
// live terminal progress view.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solberg-dev/rangedl"
	"github.com/solberg-dev/rangedl/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output     string
		maxChunks  int
		retries    int
		configPath string
		noTUI      bool
	)

	root := &cobra.Command{
		Use:   "rangedl",
		Short: "Resumable, range-based HTTP downloader",
	}

	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a file, resuming in chunks when the server supports it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), args[0], output, maxChunks, retries, configPath, noTUI)
		},
	}
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "destination directory (default: config or Downloads)")
	downloadCmd.Flags().IntVar(&maxChunks, "max-chunks", 0, "maximum chunk count (default: config or 300)")
	downloadCmd.Flags().IntVar(&retries, "retries", 0, "max retries per chunk (default: config or 3)")
	downloadCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML settings file")
	downloadCmd.Flags().BoolVar(&noTUI, "no-tui", false, "print plain log lines instead of the progress view")

	root.AddCommand(downloadCmd)
	return root
}

func runDownload(ctx context.Context, url, output string, maxChunks, retries int, configPath string, noTUI bool) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.NewEntry(logger)

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if maxChunks <= 0 {
		maxChunks = settings.GetMaxChunks()
	}
	if retries <= 0 {
		retries = settings.GetMaxRetries()
	}
	if output == "" {
		output = settings.OutputDirFor(filepath.Base(url))
	}

	engine := rangedl.NewEngine(url, rangedl.Options{
		DestinationPath: output,
		MaxChunks:       maxChunks,
		MaxRetries:      retries,
		Headers: rangedl.RequestHeaders{
			Headers: settings.CustomHeaders,
			Cookie:  settings.CustomCookie,
		},
		Log: log,
	})
	defer engine.Dispose()

	tr := &tracker{filename: filepath.Base(url), outputDir: output, startedAt: time.Now()}

	stateCh, stateID := engine.State().Subscribe()
	defer engine.State().Unsubscribe(stateID)
	deltaCh, formattedCh, progID := engine.Progress().Subscribe()
	defer engine.Progress().Unsubscribe(progID)

	go func() {
		for phase := range stateCh {
			tr.phase = phase
		}
	}()
	go func() {
		for delta := range deltaCh {
			tr.downloaded += delta
		}
	}()
	go func() {
		for formatted := range formattedCh {
			tr.formatted = formatted
		}
	}()
	go func() {
		if size, ok := <-engine.FileSize(); ok {
			tr.total = size
		}
	}()

	resultCh := engine.Download(ctx, false)

	if noTUI {
		result := <-resultCh
		if result.Err != nil {
			return result.Err
		}
		fmt.Println("downloaded:", result.Path)
		return nil
	}

	program := tea.NewProgram(newProgressModel(tr))
	go func() {
		result := <-resultCh
		tr.err = result.Err
		time.Sleep(150 * time.Millisecond)
		program.Quit()
	}()

	_, err = program.Run()
	return err
}
