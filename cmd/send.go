package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus-feishu/internal/config"
	"github.com/tasknexus/tasknexus-feishu/internal/feishu"
)

var (
	sendConfigPath string
	sendChatID     string
	sendText       string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a one-off text message to a Feishu chat",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendConfigPath, "config", "c", "", "Config file path")
	sendCmd.Flags().StringVar(&sendChatID, "chat", "", "Destination chat ID or user open ID")
	sendCmd.Flags().StringVar(&sendText, "text", "", "Message text")
	_ = sendCmd.MarkFlagRequired("chat")
	_ = sendCmd.MarkFlagRequired("text")
}

func runSend(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(sendConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Feishu.AppID == "" || cfg.Feishu.AppSecret == "" {
		return feishu.ErrMissingCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
	if err := client.SendText(ctx, sendChatID, sendText); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	fmt.Printf("Sent to %s\n", sendChatID)
	return nil
}
