package cli

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/cathoderay/accountsvc/internal/events"
	"github.com/cathoderay/accountsvc/internal/redis"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEventsCmd(load loader) *cobra.Command {
	var (
		group    string
		consumer string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the account event stream and print each event as a JSON line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Redis.Addr == "" {
				return errors.New("events requires a redis address")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			if consumer == "" {
				consumer = "tail-" + uuid.NewString()[:8]
			}
			sub := events.NewSubscriber(client.Client, events.SubscriberConfig{
				Group:    group,
				Consumer: consumer,
				Handler:  printEvent(cmd.OutOrStdout()),
			}, logger)

			err = sub.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&group, "group", "accountsvc-tail", "consumer group name")
	cmd.Flags().StringVar(&consumer, "consumer", "", "consumer name (random when empty)")
	return cmd
}

func printEvent(w io.Writer) events.Handler {
	enc := json.NewEncoder(w)
	return func(_ context.Context, event events.Event) error {
		return enc.Encode(event)
	}
}
