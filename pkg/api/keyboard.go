package api

import "encoding/json"

// ButtonStyle is the colour of an inline button
type ButtonStyle string

const (
	StylePrimary   ButtonStyle = "primary"
	StyleAttention ButtonStyle = "attention"
	StyleBase      ButtonStyle = "base"
)

// Button is one inline keyboard button. A button carries either a URL to
// open or callback data sent back to the bot as a callbackQuery event.
type Button struct {
	Text         string      `json:"text"`
	URL          string      `json:"url,omitempty"`
	CallbackData string      `json:"callbackData,omitempty"`
	Style        ButtonStyle `json:"style,omitempty"`
}

// NewCallbackButton returns a primary button that sends data back to the bot
func NewCallbackButton(text, data string) Button {
	return Button{Text: text, CallbackData: data, Style: StylePrimary}
}

// NewURLButton returns a primary button that opens url
func NewURLButton(text, url string) Button {
	return Button{Text: text, URL: url, Style: StylePrimary}
}

// Keyboard is an inline keyboard attached to a bot message
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard returns an empty keyboard
func NewKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{}}
}

// AddRow appends a row of buttons
func (k *Keyboard) AddRow(buttons ...Button) *Keyboard {
	if len(buttons) > 0 {
		k.Rows = append(k.Rows, buttons)
	}
	return k
}

// AddButton appends a row holding a single button
func (k *Keyboard) AddButton(button Button) *Keyboard {
	return k.AddRow(button)
}

// Empty reports whether the keyboard has no buttons
func (k *Keyboard) Empty() bool {
	return k == nil || len(k.Rows) == 0
}

// MarshalJSON encodes the keyboard as the array of rows the API expects
func (k *Keyboard) MarshalJSON() ([]byte, error) {
	if k == nil {
		return []byte("null"), nil
	}
	return json.Marshal(k.Rows)
}
