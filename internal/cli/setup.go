package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gdmirror/gdmirror/internal/session"
	"github.com/gdmirror/gdmirror/internal/utils"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up authorization config for both accounts",
	Long: `Interactively captures a Google API client ID and secret and writes
config_source.json and config_target.json. Existing config files are left
untouched. Also creates the correspondence ledger and error log files.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return setup(os.Stdin, os.Stdout)
}

func setup(in *os.File, out *os.File) error {
	for _, path := range []string{utils.DefaultLedgerPath, utils.DefaultErrorLogPath} {
		if err := touch(path); err != nil {
			return err
		}
	}

	reader := bufio.NewReader(in)

	clientID, err := prompt(reader, out, "Input your Google API client_id: ")
	if err != nil {
		return err
	}
	if clientID == "" {
		fmt.Fprintln(out, "Blank client_id... Quit settings.")
		return nil
	}

	clientSecret, err := prompt(reader, out, "Input your Google API client_secret: ")
	if err != nil {
		return err
	}
	if clientSecret == "" {
		fmt.Fprintln(out, "Blank client_secret... Quit settings.")
		return nil
	}

	cfg := &session.AccountConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{utils.ScopeFull},
	}

	for _, key := range []string{"source", "target"} {
		path := session.ConfigPath(key)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "%s already exists, keeping it.\n", path)
			continue
		}
		if err := writeAccountConfig(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	return nil
}

func prompt(reader *bufio.Reader, out *os.File, message string) (string, error) {
	fmt.Fprint(out, message)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

func touch(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file.Close()
}

func writeAccountConfig(path string, cfg *session.AccountConfig) error {
	data, err := session.MarshalAccountConfig(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
