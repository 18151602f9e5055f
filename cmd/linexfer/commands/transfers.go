package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/linexfer/internal/cli/output"
	"github.com/marmos91/linexfer/pkg/journal"
)

var (
	transfersAPI    string
	transfersLimit  int
	transfersOutput string
)

var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "Show recent transfers from a server's journal",
	Long: `Query the HTTP API of a running server for its most recent transfers.
The server must run with api.enabled and journal.enabled.`,
	Args: cobra.NoArgs,
	RunE: runTransfers,
}

func init() {
	transfersCmd.Flags().StringVar(&transfersAPI, "api", "http://127.0.0.1:8080", "API base URL")
	transfersCmd.Flags().IntVarP(&transfersLimit, "limit", "n", 20, "Maximum number of transfers")
	transfersCmd.Flags().StringVarP(&transfersOutput, "output", "o", "table", "Output format: table, json, yaml")
}

type transfersResponse struct {
	Status string          `json:"status"`
	Data   []journal.Entry `json:"data"`
	Error  string          `json:"error"`
}

func runTransfers(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(transfersOutput)
	if err != nil {
		return err
	}

	u, err := url.Parse(strings.TrimRight(transfersAPI, "/") + "/transfers")
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(transfersLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body transfersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if body.Error != "" {
			return fmt.Errorf("API error: %s", body.Error)
		}
		return fmt.Errorf("API error: %s", resp.Status)
	}

	if format != output.FormatTable {
		return output.Print(cmd.OutOrStdout(), format, body.Data)
	}
	return output.PrintTable(cmd.OutOrStdout(), transferTable(body.Data))
}

func transferTable(entries []journal.Entry) *output.TableData {
	t := output.NewTableData("Started", "Op", "Path", "Bytes", "Duration", "Result", "Client")
	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = e.Error
		}
		t.AddRow(
			e.StartedAt.Local().Format(time.DateTime),
			string(e.Operation),
			e.Path,
			strconv.FormatInt(e.Bytes, 10),
			e.Duration.Round(time.Millisecond).String(),
			result,
			e.ClientAddr,
		)
	}
	return t
}
