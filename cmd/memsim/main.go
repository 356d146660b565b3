// Memsim serves an interactive memory-management simulation for teaching
// paging, segmentation, and page-replacement algorithms.
package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/engine"
	"github.com/sarchlab/memsim/recording"
	"github.com/sarchlab/memsim/server"
)

var rootCmd = &cobra.Command{
	Use: "memsim",
	Short: "Serve an interactive operating-system memory-management " +
		"simulation.",
	Long: `Memsim runs a step-by-step simulation of paging and ` +
		`segmentation with FIFO and LRU page replacement, driven by a ` +
		`visualization client over a JSON API.`,
	Run: run,
}

func init() {
	rootCmd.Flags().Int("port", 8080,
		"port the API server listens on (0 picks a free port)")
	rootCmd.Flags().Bool("record", false,
		"record simulations and operations to a SQLite file")
	rootCmd.Flags().String("record-file", "",
		"name of the recording file, without the .sqlite3 suffix")
	rootCmd.Flags().String("log-level", "info",
		"log level: debug, info, warn, or error")
	rootCmd.Flags().Bool("open-browser", false,
		"open the dashboard in a browser once the server is up")
}

func run(cmd *cobra.Command, _ []string) {
	// Missing .env files are fine; flags and built-in defaults apply.
	_ = godotenv.Load()

	logger := buildLogger(cmd)

	builder := engine.MakeBuilder().WithLogger(logger)

	record, _ := cmd.Flags().GetBool("record")
	if record {
		recordFile, _ := cmd.Flags().GetString("record-file")
		builder = builder.WithRecorder(recording.New(recordFile))
	}

	srv := server.NewServer(builder.Build()).
		WithPortNumber(port(cmd)).
		WithLogger(logger)

	url := srv.StartServer()

	if open, _ := cmd.Flags().GetBool("open-browser"); open {
		if err := browser.OpenURL(url); err != nil {
			logger.WithError(err).Warn("could not open browser")
		}
	}

	select {}
}

func buildLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()

	levelName, _ := cmd.Flags().GetString("log-level")
	if !cmd.Flags().Changed("log-level") {
		if env := os.Getenv("MEMSIM_LOG_LEVEL"); env != "" {
			levelName = env
		}
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		logger.WithField("level", levelName).
			Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	return logger
}

func port(cmd *cobra.Command) int {
	portNumber, _ := cmd.Flags().GetInt("port")

	if !cmd.Flags().Changed("port") {
		if env := os.Getenv("MEMSIM_PORT"); env != "" {
			if parsed, err := strconv.Atoi(env); err == nil {
				portNumber = parsed
			}
		}
	}

	return portNumber
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
