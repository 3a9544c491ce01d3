package api

import (
	"context"
	"strings"
)

// ChatOptions are the optional settings of a new chat
type ChatOptions struct {
	About   string
	Rules   string
	Members []string
	Public  bool
	// DefaultRole is "member" for groups and "readonly" for channels
	DefaultRole    string
	JoinModeration bool
}

type memberRef struct {
	SN string `json:"sn"`
}

func memberRefs(userIDs []string) []memberRef {
	refs := make([]memberRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, memberRef{SN: id})
	}
	return refs
}

// CreateChat creates a group chat named name
func (c *Client) CreateChat(ctx context.Context, name string, opts *ChatOptions) (*CreateChatResponse, error) {
	if opts == nil {
		opts = &ChatOptions{DefaultRole: "member", JoinModeration: true}
	}

	p := newParams()
	p.set("name", name)
	p.set("about", opts.About)
	p.set("rules", opts.Rules)
	if len(opts.Members) > 0 {
		if err := p.setJSON("members", memberRefs(opts.Members)); err != nil {
			return nil, err
		}
	}
	p.setBool("public", opts.Public)
	p.set("defaultRole", opts.DefaultRole)
	p.setBool("joinModeration", opts.JoinModeration)

	var resp CreateChatResponse
	if err := c.get(ctx, "/chats/createChat", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddMembers adds users to a chat
func (c *Client) AddMembers(ctx context.Context, chatID string, userIDs ...string) (*Response, error) {
	return c.members(ctx, "/chats/members/add", chatID, userIDs)
}

// DeleteMembers removes users from a chat
func (c *Client) DeleteMembers(ctx context.Context, chatID string, userIDs ...string) (*Response, error) {
	return c.members(ctx, "/chats/members/delete", chatID, userIDs)
}

func (c *Client) members(ctx context.Context, path, chatID string, userIDs []string) (*Response, error) {
	p := newParams()
	p.set("chatId", chatID)
	if err := p.setJSON("members", memberRefs(userIDs)); err != nil {
		return nil, err
	}
	return c.simple(ctx, path, p)
}

// SendActions reports what the bot is doing ("typing", "looking"). Call it
// with no actions once the bot is done.
func (c *Client) SendActions(ctx context.Context, chatID string, actions ...string) (*Response, error) {
	p := newParams()
	p.set("chatId", chatID)
	p.set("actions", strings.Join(actions, ","))
	return c.simple(ctx, "/chats/sendActions", p)
}

// GetChatInfo returns chat or user details
func (c *Client) GetChatInfo(ctx context.Context, chatID string) (*ChatInfo, error) {
	var resp ChatInfo
	if err := c.get(ctx, "/chats/getInfo", chatParams(chatID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAdmins lists the administrators of a chat
func (c *Client) GetAdmins(ctx context.Context, chatID string) (*AdminsResponse, error) {
	var resp AdminsResponse
	if err := c.get(ctx, "/chats/getAdmins", chatParams(chatID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMembers lists chat members. Pass the cursor of the previous page to
// continue, or "" for the first page.
func (c *Client) GetMembers(ctx context.Context, chatID, cursor string) (*MembersResponse, error) {
	p := chatParams(chatID)
	p.set("cursor", cursor)

	var resp MembersResponse
	if err := c.get(ctx, "/chats/getMembers", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBlockedUsers lists users blocked in a chat
func (c *Client) GetBlockedUsers(ctx context.Context, chatID string) (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.get(ctx, "/chats/getBlockedUsers", chatParams(chatID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPendingUsers lists users waiting for join approval
func (c *Client) GetPendingUsers(ctx context.Context, chatID string) (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.get(ctx, "/chats/getPendingUsers", chatParams(chatID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BlockUser blocks userID in a chat, optionally deleting their recent messages
func (c *Client) BlockUser(ctx context.Context, chatID, userID string, delLastMessages bool) (*Response, error) {
	p := chatParams(chatID)
	p.set("userId", userID)
	p.setBool("delLastMessages", delLastMessages)
	return c.simple(ctx, "/chats/blockUser", p)
}

// UnblockUser lifts a block
func (c *Client) UnblockUser(ctx context.Context, chatID, userID string) (*Response, error) {
	p := chatParams(chatID)
	p.set("userId", userID)
	return c.simple(ctx, "/chats/unblockUser", p)
}

// ResolvePending approves or rejects join requests, either for one user or
// for everyone waiting. Exactly one of userID and everyone must be set.
func (c *Client) ResolvePending(ctx context.Context, chatID string, approve bool, userID string, everyone bool) (*Response, error) {
	if (userID == "") == !everyone {
		return nil, ErrResolvePendingTarget
	}

	p := chatParams(chatID)
	p.setExplicitBool("approve", approve)
	p.set("userId", userID)
	p.setBool("everyone", everyone)
	return c.simple(ctx, "/chats/resolvePending", p)
}

// SetTitle renames a chat
func (c *Client) SetTitle(ctx context.Context, chatID, title string) (*Response, error) {
	p := chatParams(chatID)
	p.set("title", title)
	return c.simple(ctx, "/chats/setTitle", p)
}

// SetAbout changes a chat description
func (c *Client) SetAbout(ctx context.Context, chatID, about string) (*Response, error) {
	p := chatParams(chatID)
	p.set("about", about)
	return c.simple(ctx, "/chats/setAbout", p)
}

// SetRules changes chat rules
func (c *Client) SetRules(ctx context.Context, chatID, rules string) (*Response, error) {
	p := chatParams(chatID)
	p.set("rules", rules)
	return c.simple(ctx, "/chats/setRules", p)
}

// SetAvatar uploads imagePath as the chat avatar
func (c *Client) SetAvatar(ctx context.Context, chatID, imagePath string) (*Response, error) {
	var resp Response
	if err := c.post(ctx, "/chats/avatar/set", chatParams(chatID), imagePath, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PinMessage pins msgID in a chat
func (c *Client) PinMessage(ctx context.Context, chatID, msgID string) (*Response, error) {
	p := chatParams(chatID)
	p.set("msgId", msgID)
	return c.simple(ctx, "/chats/pinMessage", p)
}

// UnpinMessage unpins msgID in a chat
func (c *Client) UnpinMessage(ctx context.Context, chatID, msgID string) (*Response, error) {
	p := chatParams(chatID)
	p.set("msgId", msgID)
	return c.simple(ctx, "/chats/unpinMessage", p)
}

func chatParams(chatID string) params {
	p := newParams()
	p.set("chatId", chatID)
	return p
}

func (c *Client) simple(ctx context.Context, path string, p params) (*Response, error) {
	var resp Response
	if err := c.get(ctx, path, p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
