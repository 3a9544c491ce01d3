package main

import (
	"fmt"
	"strings"

	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/spf13/cobra"
)

var (
	sendReplyTo string
	sendFile    string
	sendVoice   bool
)

var sendCmd = &cobra.Command{
	Use:   "send <chat-id> [text...]",
	Short: "Send a message or file to a chat",
	Long: `Send a text message to a chat. With --file, upload a local file instead and
use the text as its caption.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadClient()
		if err != nil {
			return err
		}

		chatID := args[0]
		text := strings.Join(args[1:], " ")
		opts := &api.MessageOptions{ReplyMsgID: sendReplyTo}
		ctx := cmd.Context()

		if sendFile != "" {
			source := api.FileSource{Path: sendFile, Caption: text}
			var resp *api.FileResponse
			if sendVoice {
				resp, err = client.SendVoice(ctx, chatID, source, opts)
			} else {
				resp, err = client.SendFile(ctx, chatID, source, opts)
			}
			if err != nil {
				return fmt.Errorf("failed to send file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent msgId=%s fileId=%s\n", resp.MsgID, resp.FileID)
			return nil
		}

		if text == "" {
			return fmt.Errorf("nothing to send: give a text or --file")
		}
		resp, err := client.SendText(ctx, chatID, text, opts)
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent msgId=%s\n", resp.MsgID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendReplyTo, "reply-to", "", "Message id to reply to")
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Local file to upload")
	sendCmd.Flags().BoolVar(&sendVoice, "voice", false, "Send --file as a voice message")
}
