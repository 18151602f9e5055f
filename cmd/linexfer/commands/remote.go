package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/linexfer/internal/cli/output"
	"github.com/marmos91/linexfer/pkg/client"
)

var (
	remoteAddr    string
	remoteTimeout time.Duration
	lsOutput      string
)

func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&remoteAddr, "addr", "a", "127.0.0.1:9090", "Server address (host:port)")
	cmd.Flags().DurationVar(&remoteTimeout, "timeout", client.DefaultTimeout, "Per-command timeout")
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory on a server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(lsOutput)
		if err != nil {
			return err
		}
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		return withClient(cmd, func(c *client.Client) error {
			entries, err := c.List(dir)
			if err != nil {
				return err
			}
			var data any = listing(entries)
			if format != output.FormatTable {
				data = listing(entries).entries()
			}
			return output.Print(cmd.OutOrStdout(), format, data)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a file from a server",
	Long: `Download a file. The local path defaults to the remote base name in the
current directory; "-" writes to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := args[0]
		local := path.Base(remote)
		if len(args) == 2 {
			local = args[1]
		}

		return withClient(cmd, func(c *client.Client) error {
			if local == "-" {
				_, err := c.Get(remote, cmd.OutOrStdout())
				return err
			}

			n, err := download(c, remote, local)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s (%d bytes)\n", remote, local, n)
			return nil
		})
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a file to a server",
	Long:  `Upload a file. The remote path defaults to the local base name.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		remote := filepath.Base(local)
		if len(args) == 2 {
			remote = args[1]
		}

		f, err := os.Open(local)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", local)
		}

		return withClient(cmd, func(c *client.Client) error {
			n, err := c.Put(remote, f, info.Size())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s (%d bytes)\n", local, remote, n)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{lsCmd, getCmd, putCmd} {
		addRemoteFlags(c)
	}
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "table", "Output format: table, json, yaml")
}

// download writes remote to a temporary file beside local and renames it
// into place once the transfer is complete. local is untouched on failure.
func download(c *client.Client, remote, local string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".*.part")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := c.Get(remote, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), local)
}

// withClient dials the server, runs fn and says goodbye.
func withClient(cmd *cobra.Command, fn func(*client.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	c, err := client.Dial(ctx, remoteAddr, client.WithTimeout(remoteTimeout))
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		_ = c.Close()
		return err
	}
	return c.Quit()
}

// listing renders directory entries as a table.
type listing []client.Entry

type listingEntry struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Size int64  `json:"size" yaml:"size"`
}

func (l listing) Headers() []string {
	return []string{"Type", "Size", "Name"}
}

func (l listing) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{entryType(e), strconv.FormatInt(e.Size, 10), e.Name})
	}
	return rows
}

func (l listing) entries() []listingEntry {
	out := make([]listingEntry, 0, len(l))
	for _, e := range l {
		out = append(out, listingEntry{Name: e.Name, Type: entryType(e), Size: e.Size})
	}
	return out
}

func entryType(e client.Entry) string {
	if e.Dir {
		return "dir"
	}
	return "file"
}
