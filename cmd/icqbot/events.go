package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/k0kubun/pp"
	"github.com/keepmind9/icqbot/pkg/bot"
	"github.com/spf13/cobra"
)

var (
	eventsSince    int64
	eventsPollTime time.Duration
	eventsPretty   bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Fetch one batch of pending events",
	Long: `Fetch one batch of events after --since and print them without dispatching.
Events are consumed on the server side only by a later fetch with a higher
--since, so this is safe to run next to a stopped bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadClient()
		if err != nil {
			return err
		}

		source := bot.NewEventSource(client, eventsPollTime)
		source.SetCursor(eventsSince)

		events, err := source.Fetch(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if eventsPretty {
			pp.Fprintln(out, events)
		} else {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode events: %w", err)
			}
			fmt.Fprintln(out, string(data))
		}
		fmt.Fprintf(out, "next cursor: %d\n", source.Cursor())
		return nil
	},
}

func init() {
	eventsCmd.Flags().Int64Var(&eventsSince, "since", 1, "Fetch events after this event id")
	eventsCmd.Flags().DurationVar(&eventsPollTime, "poll-time", 5*time.Second, "How long the server may wait for events")
	eventsCmd.Flags().BoolVar(&eventsPretty, "pretty", false, "Pretty-print events instead of JSON")
}
