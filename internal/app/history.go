package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rbright/raybot/internal/archive"
	"github.com/rbright/raybot/internal/config"
)

const historyLimit = 20

// openArchive returns nil, nil when archiving is disabled.
func openArchive(cfg config.ArchiveConfig) (*archive.Store, error) {
	if !cfg.Enable {
		return nil, nil
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		var err error
		if path, err = archive.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return archive.Open(path)
}

func (r Runner) commandHistory(ctx context.Context, cfg config.Config, args []string) int {
	store, err := openArchive(cfg.Archive)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	if store == nil {
		fmt.Fprintln(r.Stderr, "error: archive is disabled")
		return exitFailure
	}
	defer store.Close()

	if len(args) == 1 {
		session, err := store.Get(ctx, args[0])
		if errors.Is(err, archive.ErrNotFound) {
			fmt.Fprintf(r.Stderr, "error: no archived session %q\n", args[0])
			return exitFailure
		}
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return exitFailure
		}
		fmt.Fprint(r.Stdout, session.Export)
		return exitOK
	}

	sessions, err := store.List(ctx, historyLimit)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	if len(sessions) == 0 {
		fmt.Fprintln(r.Stdout, "no archived sessions")
		return exitOK
	}

	tw := tabwriter.NewWriter(r.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d entries\t%s\n",
			s.SessionID,
			s.EndedAt.Local().Format(time.DateTime),
			s.Entries,
			s.FirstQuestion,
		)
	}
	_ = tw.Flush()
	return exitOK
}
