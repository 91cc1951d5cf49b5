package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/store"
)

// IdentityOptions holds flags for the identity commands.
type IdentityOptions struct {
	*RootOptions
	Database   string
	Identifier string
	Prefix     string
	Tier       string
	Hash       string
}

// IdentityEntry is one row of the identity table as printed.
type IdentityEntry struct {
	Identifier    string `json:"identifier,omitempty"`
	Prefix        string `json:"prefix,omitempty"`
	Tier          string `json:"tier"`
	IntegrityHash string `json:"integrity_hash"`
}

func newIdentityEntry(id access.Identity) IdentityEntry {
	return IdentityEntry{
		Identifier:    id.Identifier,
		Prefix:        id.Prefix,
		Tier:          string(id.Tier),
		IntegrityHash: fmt.Sprintf("0x%016X", id.IntegrityHash),
	}
}

// NewIdentityCommand creates the identity command group.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the SQLite identity backend",
	}
	cmd.AddCommand(newIdentityAddCommand(rootOpts))
	cmd.AddCommand(newIdentityListCommand(rootOpts))
	return cmd
}

func newIdentityAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace an identity",
		Long: `Add an exact identifier or a prefix entry to the database identity
table. An existing entry with the same key is replaced.

Examples:
  accord identity add --db ./accord.db --identifier did:t2:ops-writer --tier READ_WRITE --hash 0x1000
  accord identity add --db ./accord.db --prefix did:t4: --tier DEFAULT --hash 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Identifier, "identifier", "", "exact identifier")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "identifier prefix")
	cmd.MarkFlagsMutuallyExclusive("identifier", "prefix")
	cmd.MarkFlagsOneRequired("identifier", "prefix")
	cmd.Flags().StringVar(&opts.Tier, "tier", "", "access tier (required)")
	_ = cmd.MarkFlagRequired("tier")
	cmd.Flags().StringVar(&opts.Hash, "hash", "0", "integrity hash (decimal or 0x hex)")

	return cmd
}

func runIdentityAdd(opts *IdentityOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tier, err := ir.ParseTier(opts.Tier)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --tier", err)
	}
	hash, err := strconv.ParseUint(opts.Hash, 0, 64)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --hash", err)
	}
	id := access.Identity{
		Identifier:    opts.Identifier,
		Prefix:        opts.Prefix,
		Tier:          tier,
		IntegrityHash: hash,
	}
	if err := id.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid identity", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	if err := st.PutIdentity(cmd.Context(), id); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to store identity", err)
	}

	entry := newIdentityEntry(id)
	return formatter.Render(entry, func(w io.Writer) {
		key := entry.Identifier
		if entry.Prefix != "" {
			key = entry.Prefix + "*"
		}
		fmt.Fprintf(w, "✓ %s -> %s\n", key, entry.Tier)
	})
}

func newIdentityListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the database identity table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIdentityList(opts *IdentityOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	ids, err := st.ListIdentities(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list identities", err)
	}

	entries := make([]IdentityEntry, len(ids))
	for i, id := range ids {
		entries[i] = newIdentityEntry(id)
	}
	return formatter.Render(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No identities.")
		}
		for _, e := range entries {
			key := e.Identifier
			if e.Prefix != "" {
				key = e.Prefix + "*"
			}
			fmt.Fprintf(w, "%-32s %-11s %s\n", key, e.Tier, e.IntegrityHash)
		}
	})
}
