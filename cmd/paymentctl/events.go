package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/ticket-payment/internal/app"
)

func newEventsCommand() *cobra.Command {
	var (
		channel string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow payment events published on Redis",
		Long:  `Print every payment event published on the events channel as one JSON line until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				if c.Events == nil {
					return fmt.Errorf("redis is not configured, set redis.addr")
				}
				if channel == "" {
					channel = c.Config.Redis.EventsChannel
				}

				messages, err := c.Events.Subscribe(ctx, channel)
				if err != nil {
					return err
				}
				c.Logger.Info("Following payment events")

				out := cmd.OutOrStdout()
				received := 0
				for msg := range messages {
					if json.Valid(msg.Payload) {
						fmt.Fprintln(out, string(msg.Payload))
					} else {
						fmt.Fprintf(out, "%q\n", msg.Payload)
					}
					received++
					if limit > 0 && received >= limit {
						return nil
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Channel to follow (default: redis.events_channel)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many events, 0 follows until interrupted")

	return cmd
}
