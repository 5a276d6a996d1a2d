package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gdmirror/gdmirror/internal/api"
	"github.com/gdmirror/gdmirror/internal/config"
	"github.com/gdmirror/gdmirror/internal/files"
	"github.com/gdmirror/gdmirror/internal/folders"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/session"
	"github.com/gdmirror/gdmirror/internal/transfer"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var startFlags struct {
	parallel     int
	skipExisting bool
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the transfer from the source account to the target account",
	Long: `Logs in to both accounts using config_source.json and config_target.json,
then mirrors the source root folder into the target root folder.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVar(&startFlags.parallel, "parallel", 0, "Concurrent transfers per folder level (overrides config)")
	startCmd.Flags().BoolVar(&startFlags.skipExisting, "skip-existing", true, "Skip files whose title already exists on the target")

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if startFlags.parallel > 0 {
		cfg.Parallel = startFlags.parallel
	}

	source, err := session.Create(ctx, "source", logger)
	if err != nil {
		return err
	}
	target, err := session.Create(ctx, "target", logger)
	if err != nil {
		return err
	}

	skip, err := transfer.LoadSkipPolicy(cfg.StrategyPath)
	if err != nil {
		return err
	}
	if skip.Len() > 0 {
		logger.Info("Loaded skip list", logging.F("folders", skip.Len()))
	}

	ledger, err := transfer.OpenLedger(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	errlog, err := logging.NewFileLogger(logging.FileLoggerConfig{
		FilePath: cfg.ErrorLogPath,
		Level:    logging.ERROR,
	})
	if err != nil {
		return err
	}
	defer errlog.Close()

	sourceClient := api.NewClient(source.Service(), "source", cfg.MaxRetries, cfg.RetryBaseDelay, logger)
	targetClient := api.NewClient(target.Service(), "target", cfg.MaxRetries, cfg.RetryBaseDelay, logger)

	engine := transfer.NewEngine(transfer.EngineConfig{
		Source:      transfer.NewDriveSource(folders.NewManager(sourceClient), files.NewManager(sourceClient)),
		Target:      transfer.NewDriveTarget(folders.NewManager(targetClient), files.NewManager(targetClient)),
		SourceRoot:  source.RootFolder(),
		TargetRoot:  target.RootFolder(),
		Skip:        skip,
		Ledger:      ledger,
		Logger:      logger,
		ErrorLog:    errlog,
		TempDir:     cfg.TempDir,
		Parallel:    cfg.Parallel,
		CheckExists: startFlags.skipExisting,
		BackoffBase: time.Second,
	})

	summary, err := engine.Run(ctx)
	printSummary(summary)
	if err != nil {
		return err
	}

	if summary.FilesFailed > 0 {
		fmt.Fprintf(os.Stdout, "Some items failed; see %s\n", cfg.ErrorLogPath)
	}
	return nil
}

func printSummary(summary transfer.Summary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Transferred", "Skipped", "Failed", "Created", "Reused"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{
		"Files",
		strconv.FormatInt(summary.FilesTransferred, 10),
		strconv.FormatInt(summary.FilesSkipped, 10),
		strconv.FormatInt(summary.FilesFailed, 10),
		"-",
		"-",
	})
	table.Append([]string{
		"Folders",
		"-",
		strconv.FormatInt(summary.FoldersSkipped, 10),
		"-",
		strconv.FormatInt(summary.FoldersCreated, 10),
		strconv.FormatInt(summary.FoldersReused, 10),
	})

	table.Render()
}
