package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tasknexus/tasknexus-feishu/internal/config"
	"github.com/tasknexus/tasknexus-feishu/internal/container"
)

var gatewayConfigPath string

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the Feishu adapter and log inbound messages",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().StringVarP(&gatewayConfigPath, "config", "c", "", "Config file path")
}

func runGateway(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(gatewayConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	b := c.MessageBus()
	adapter := c.Feishu()
	// The callback runs on the adapter's connection goroutine, so it only
	// hands the message to the bus; all host work happens on this side.
	adapter.OnMessage(b.PublishInbound)

	for _, p := range c.Registry().List() {
		slog.Info("channel registered", "id", p.ID(), "label", p.Label())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return adapter.Start(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case msg := <-b.InboundChan():
				slog.Info("inbound message",
					"channel", msg.ChannelID,
					"chat_id", msg.ChatID,
					"sender", msg.SenderID,
					"content", msg.Preview())
			}
		}
	})

	fmt.Println("Gateway running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("Shutdown complete.")
	return nil
}
