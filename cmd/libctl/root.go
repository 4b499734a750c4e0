package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ariefcatur/booknest/internal/client"
)

type app struct {
	out     io.Writer
	baseURL string
	apiKey  string
	asJSON  bool
	timeout time.Duration

	c *client.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Manage books, members and issuances through the library API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.connect()
		},
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&a.baseURL, "url", envOr("LIBRARY_API_URL", "http://localhost:3002"), "API base URL")
	f.StringVar(&a.apiKey, "api-key", os.Getenv("LIBRARY_API_KEY"), "API key (prompted when empty)")
	f.BoolVar(&a.asJSON, "json", false, "print raw JSON")
	f.DurationVar(&a.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		a.booksCmd(),
		a.membersCmd(),
		a.issueCmd(),
		a.returnCmd(),
		a.issuancesCmd(),
		a.statsCmd(),
		a.outstandingCmd(),
		a.overdueCmd(),
		a.neverBorrowedCmd(),
		a.mostBorrowedCmd(),
	)
	return root
}

func (a *app) connect() error {
	if a.c != nil {
		return nil
	}
	if a.apiKey == "" {
		key, err := readSecret("API key: ")
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}
		a.apiKey = key
	}
	a.c = client.New(a.baseURL, a.apiKey)
	return nil
}

func (a *app) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// readSecret prompts without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no API key: set LIBRARY_API_KEY or --api-key")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// render prints v as indented JSON or hands a tabwriter to table.
func (a *app) render(v any, table func(w *tabwriter.Writer)) error {
	if a.asJSON || table == nil {
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(b))
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
