package api

import "encoding/json"

// Chat identifies the conversation an event happened in
type Chat struct {
	ChatID string `json:"chatId"`
	Type   string `json:"type"` // private, group, channel
	Title  string `json:"title,omitempty"`
}

// User is a message author or chat member
type User struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Nick      string `json:"nick,omitempty"`
}

// Part is an attachment of a message: file, sticker, mention, reply, forward.
// Its payload is left raw since the shape depends on Type.
type Part struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response is the plain {"ok": true} reply
type Response struct {
	OK bool `json:"ok"`
}

// MessageResponse is returned by calls that create a message
type MessageResponse struct {
	OK    bool   `json:"ok"`
	MsgID string `json:"msgId"`
}

// FileResponse is returned by file and voice sends
type FileResponse struct {
	OK     bool   `json:"ok"`
	MsgID  string `json:"msgId"`
	FileID string `json:"fileId"`
}

// Photo is one avatar of the bot
type Photo struct {
	URL string `json:"url"`
}

// SelfResponse describes the bot itself
type SelfResponse struct {
	OK        bool    `json:"ok"`
	UserID    string  `json:"userId"`
	Nick      string  `json:"nick"`
	FirstName string  `json:"firstName"`
	About     string  `json:"about"`
	Photo     []Photo `json:"photo"`
}

// CreateChatResponse carries the id of a new chat
type CreateChatResponse struct {
	OK     bool   `json:"ok"`
	ChatID string `json:"sn"`
}

// ChatInfo is the reply of chats/getInfo
type ChatInfo struct {
	OK             bool   `json:"ok"`
	Type           string `json:"type"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Nick           string `json:"nick,omitempty"`
	Title          string `json:"title,omitempty"`
	About          string `json:"about,omitempty"`
	Rules          string `json:"rules,omitempty"`
	InviteLink     string `json:"inviteLink,omitempty"`
	Public         bool   `json:"public,omitempty"`
	JoinModeration bool   `json:"joinModeration,omitempty"`
	IsBot          bool   `json:"isBot,omitempty"`
}

// Member is a chat participant as reported by chats/getAdmins and getMembers
type Member struct {
	UserID  string `json:"userId"`
	Creator bool   `json:"creator,omitempty"`
	Admin   bool   `json:"admin,omitempty"`
}

// AdminsResponse lists chat administrators
type AdminsResponse struct {
	OK     bool     `json:"ok"`
	Admins []Member `json:"admins"`
}

// MembersResponse lists chat members; Cursor pages through large chats
type MembersResponse struct {
	OK      bool     `json:"ok"`
	Members []Member `json:"members"`
	Cursor  string   `json:"cursor,omitempty"`
}

// UsersResponse lists blocked or pending users
type UsersResponse struct {
	OK    bool   `json:"ok"`
	Users []User `json:"users"`
}

// FileInfo describes an uploaded file
type FileInfo struct {
	OK       bool   `json:"ok"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
