package api

import (
	"context"
	"encoding/json"
)

// MessageOptions are the optional parameters shared by message calls
type MessageOptions struct {
	ReplyMsgID    string
	ForwardChatID string
	ForwardMsgIDs []string
	Keyboard      *Keyboard
	// Format is a raw formatting object, used instead of ParseMode markup
	Format    json.RawMessage
	ParseMode string
}

// FileSource names a file to send: either an already uploaded file id or a
// local path to upload
type FileSource struct {
	FileID  string
	Path    string
	Caption string
}

func (c *Client) messageParams(chatID string, opts *MessageOptions) (params, error) {
	p := newParams()
	p.set("chatId", chatID)

	if opts == nil {
		opts = &MessageOptions{}
	}
	p.set("replyMsgId", opts.ReplyMsgID)
	p.set("forwardChatId", opts.ForwardChatID)
	if err := p.setJSON("forwardMsgId", opts.ForwardMsgIDs); err != nil {
		return nil, err
	}
	if !opts.Keyboard.Empty() {
		if err := p.setJSON("inlineKeyboardMarkup", opts.Keyboard); err != nil {
			return nil, err
		}
	}
	if len(opts.Format) > 0 {
		p.set("format", string(opts.Format))
	}

	parseMode := opts.ParseMode
	if parseMode == "" && len(opts.Format) == 0 {
		parseMode = c.parseMode
	}
	p.set("parseMode", parseMode)

	return p, nil
}

// SendText sends a text message to chatID
func (c *Client) SendText(ctx context.Context, chatID, text string, opts *MessageOptions) (*MessageResponse, error) {
	p, err := c.messageParams(chatID, opts)
	if err != nil {
		return nil, err
	}
	p.set("text", text)

	var resp MessageResponse
	if err := c.get(ctx, "/messages/sendText", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendFile sends a file by id, or uploads it from a local path
func (c *Client) SendFile(ctx context.Context, chatID string, file FileSource, opts *MessageOptions) (*FileResponse, error) {
	return c.sendFile(ctx, "/messages/sendFile", chatID, file, opts)
}

// SendVoice sends a voice message by id, or uploads it from a local path
func (c *Client) SendVoice(ctx context.Context, chatID string, file FileSource, opts *MessageOptions) (*FileResponse, error) {
	return c.sendFile(ctx, "/messages/sendVoice", chatID, file, opts)
}

func (c *Client) sendFile(ctx context.Context, path, chatID string, file FileSource, opts *MessageOptions) (*FileResponse, error) {
	if file.FileID == "" && file.Path == "" {
		return nil, ErrNoFile
	}

	p, err := c.messageParams(chatID, opts)
	if err != nil {
		return nil, err
	}
	p.set("caption", file.Caption)

	var resp FileResponse
	if file.Path != "" {
		err = c.post(ctx, path, p, file.Path, &resp)
	} else {
		p.set("fileId", file.FileID)
		err = c.get(ctx, path, p, &resp)
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// EditText replaces the text of a message the bot sent
func (c *Client) EditText(ctx context.Context, chatID, msgID, text string, opts *MessageOptions) (*Response, error) {
	p, err := c.messageParams(chatID, opts)
	if err != nil {
		return nil, err
	}
	p.set("msgId", msgID)
	p.set("text", text)

	var resp Response
	if err := c.get(ctx, "/messages/editText", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMessages deletes one or more messages from chatID
func (c *Client) DeleteMessages(ctx context.Context, chatID string, msgIDs ...string) (*Response, error) {
	p := newParams()
	p.set("chatId", chatID)
	for _, id := range msgIDs {
		p.add("msgId", id)
	}

	var resp Response
	if err := c.get(ctx, "/messages/deleteMessages", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnswerCallbackQuery acknowledges a button press. text shows a notification
// (or an alert when showAlert is set); url asks the client to open a link.
func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string, showAlert bool, url string) (*Response, error) {
	p := newParams()
	p.set("queryId", queryID)
	p.set("text", text)
	p.setBool("showAlert", showAlert)
	p.set("url", url)

	var resp Response
	if err := c.get(ctx, "/messages/answerCallbackQuery", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
