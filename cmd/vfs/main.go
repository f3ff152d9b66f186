package main

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vorteil/vfsdisk/pkg/elog"
)

var log *elog.CLI

var (
	flagJSON    bool
	flagVerbose bool
	flagDebug   bool
	flagSize    string
)

var rootCmd = &cobra.Command{
	Use:   "vfs DISK_PATH",
	Short: "interactive shell for a block-structured virtual disk image",
	Long: "vfs mounts (or, on confirmation, formats) a single-file virtual disk image " +
		"and drops into an interactive command loop for manipulating the files and " +
		"directories stored inside it.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := homedir.Expand(args[0])
		if err != nil {
			return err
		}
		return runShell(path)
	},
}

func commandInit() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "format log messages as JSON (ls/df tables are unaffected)")
	rootCmd.PersistentFlags().StringVar(&flagSize, "size", "", "size for mkfs if DISK_PATH doesn't exist yet (e.g. 4M); skips the interactive prompts")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := &elog.CLI{}

		if flagJSON {
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(logger)
		}
		logrus.SetLevel(logrus.TraceLevel)

		if flagDebug {
			logger.IsDebug = true
			logger.IsVerbose = true
		} else if flagVerbose {
			logger.IsVerbose = true
		}

		log = logger
		return nil
	}
}

func main() {
	commandInit()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
