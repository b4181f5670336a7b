package main

import (
	"context"
	"encoding/json"
	"fieldfuze-dispatch/client"
	"fieldfuze-dispatch/models"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newBoardCmd(a *app) *cobra.Command {
	var flags boardFlags
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the dispatch board once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := flags.cursor(time.Now(), a.location())
			if err != nil {
				return err
			}
			q, err := flags.query(cursor)
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			board, err := a.api().FetchBoard(ctx, q)
			if err != nil {
				return err
			}
			renderBoard(a.out, cursor, board)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var flags boardFlags
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the dispatch board and reprint it on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := flags.cursor(time.Now(), a.location())
			if err != nil {
				return err
			}
			q, err := flags.query(cursor)
			if err != nil {
				return err
			}
			if interval == 0 {
				interval = a.config.PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cursor, q, interval)
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	return cmd
}

// watch prints every settled snapshot whose contents changed until ctx is done.
func (a *app) watch(ctx context.Context, cursor client.DateRangeCursor, q models.DispatchQuery, interval time.Duration) error {
	store := client.NewClientDispatchStore(a.api(), client.StoreOptions{
		RetryBaseInterval: a.config.RetryBaseInterval,
		PollInterval:      interval,
	}, a.logger)
	defer store.Close()

	// Only the newest snapshot matters, so a full channel is replaced.
	updates := make(chan client.Snapshot, 1)
	unsubscribe := store.Subscribe(func(snap client.Snapshot) {
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- snap
		}
	})
	defer unsubscribe()

	store.SetQuery(q)
	store.Start()

	var lastDigest string
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-updates:
			if snap.IsLoading {
				continue
			}
			if snap.Error != nil {
				fmt.Fprintf(a.out, "refresh failed: %v\n", snap.Error)
				if len(snap.Jobs) == 0 {
					continue
				}
			}

			board := &models.DispatchResponse{
				Jobs:           snap.Jobs,
				Technicians:    snap.Technicians,
				Crews:          snap.Crews,
				Stats:          snap.Stats,
				DispatchStatus: snap.DispatchStatus,
			}
			digest, err := json.Marshal(board)
			if err == nil && string(digest) == lastDigest {
				continue
			}
			lastDigest = string(digest)

			fmt.Fprintf(a.out, "\n[%s]\n", time.Now().Format(time.Kitchen))
			renderBoard(a.out, cursor, board)
		}
	}
}
