package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// execute runs the root command with args and returns everything it printed
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// flag variables are package globals and outlive a single Execute
	configFile = "config.yaml"
	validateShow, validateJSON = false, false
	sendReplyTo, sendFile, sendVoice = "", "", false
	eventsSince, eventsPretty = 1, false
	versionJSON = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// apiStub serves a fixed reply per path and records the queries it saw
type apiStub struct {
	mu      sync.Mutex
	queries map[string][]string
	bodies  map[string]string
	replies map[string]interface{}
}

func newAPIStub(t *testing.T, replies map[string]interface{}) (*apiStub, string) {
	t.Helper()
	stub := &apiStub{queries: map[string][]string{}, bodies: map[string]string{}, replies: replies}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		stub.mu.Lock()
		stub.queries[r.URL.Path] = append(stub.queries[r.URL.Path], r.URL.RawQuery)
		stub.bodies[r.URL.Path] = buf.String()
		stub.mu.Unlock()

		reply, ok := replies[r.URL.Path]
		if !ok {
			reply = map[string]interface{}{"ok": true}
		}
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return stub, srv.URL
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCommand_Properties(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "icqbot", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.Contains(t, rootCmd.Short, "ICQ Bot API")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expectedCommands := []string{
		"start",
		"validate",
		"send",
		"events",
		"self",
		"token",
		"version",
	}

	subcommandNames := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		subcommandNames[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		assert.True(t, subcommandNames[expected], "missing subcommand: %s", expected)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "", "--help")
	assert.NoError(t, err)
	assert.Contains(t, out, "icqbot")
}

func TestAllCommands_HaveUsage(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		assert.NotEmpty(t, cmd.Use, "command %s should have usage", cmd.Name())
		assert.NotEmpty(t, cmd.Short, "command %s should have short description", cmd.Name())
	}
}

func TestConfigFlag_IsPersistent(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "config.yaml", flag.DefValue)
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "", "version", "--json")
	require.NoError(t, err)

	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v.Version)
}

func TestVersionCommand_Text(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "icqbot version information:")
	assert.Contains(t, out, "Version:   dev")
}

func TestSelfCommand(t *testing.T) {
	_, url := newAPIStub(t, map[string]interface{}{
		"/self/get": map[string]interface{}{"ok": true, "userId": "747000001", "nick": "helperbot", "firstName": "Helper"},
	})
	path := writeTestConfig(t, "api:\n  token: test-token\n  base_url: "+url+"\nlogging:\n  level: error\n")

	out, err := execute(t, "", "self", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "User ID: 747000001")
	assert.Contains(t, out, "Nick:    helperbot")
}

func TestSelfCommand_APIError(t *testing.T) {
	_, url := newAPIStub(t, map[string]interface{}{
		"/self/get": map[string]interface{}{"ok": false, "description": "Invalid token"},
	})
	path := writeTestConfig(t, "api:\n  token: bad\n  base_url: "+url+"\n")

	_, err := execute(t, "", "self", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestSendCommand_Text(t *testing.T) {
	stub, url := newAPIStub(t, map[string]interface{}{
		"/messages/sendText": map[string]interface{}{"ok": true, "msgId": "555"},
	})
	path := writeTestConfig(t, "api:\n  token: test-token\n  base_url: "+url+"\n")

	out, err := execute(t, "", "send", "-c", path, "--reply-to", "12", "team@chat.agent", "deploy", "finished")
	require.NoError(t, err)
	assert.Contains(t, out, "sent msgId=555")

	require.Len(t, stub.queries["/messages/sendText"], 1)
	q := stub.queries["/messages/sendText"][0]
	assert.Contains(t, q, "chatId=team%40chat.agent")
	assert.Contains(t, q, "text=deploy+finished")
	assert.Contains(t, q, "replyMsgId=12")
}

func TestSendCommand_File(t *testing.T) {
	stub, url := newAPIStub(t, map[string]interface{}{
		"/messages/sendFile": map[string]interface{}{"ok": true, "msgId": "556", "fileId": "f-1"},
	})
	path := writeTestConfig(t, "api:\n  token: test-token\n  base_url: "+url+"\n")
	upload := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(upload, []byte("weekly numbers"), 0644))

	out, err := execute(t, "", "send", "-c", path, "--file", upload, "team@chat.agent", "weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "fileId=f-1")
	assert.Contains(t, stub.queries["/messages/sendFile"][0], "caption=weekly")
	assert.Contains(t, stub.bodies["/messages/sendFile"], "weekly numbers")
}

func TestSendCommand_NothingToSend(t *testing.T) {
	_, url := newAPIStub(t, nil)
	path := writeTestConfig(t, "api:\n  token: test-token\n  base_url: "+url+"\n")

	_, err := execute(t, "", "send", "-c", path, "team@chat.agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to send")
}

func TestEventsCommand(t *testing.T) {
	stub, url := newAPIStub(t, map[string]interface{}{
		"/events/get": map[string]interface{}{"ok": true, "events": []map[string]interface{}{
			{"eventId": 41, "type": "newMessage", "payload": map[string]interface{}{
				"msgId": "1", "chat": map[string]string{"chatId": "alice"}, "text": "hello",
			}},
			{"eventId": 42, "type": "somethingNew", "payload": map[string]interface{}{}},
		}},
	})
	path := writeTestConfig(t, "api:\n  token: test-token\n  base_url: "+url+"\n")

	out, err := execute(t, "", "events", "-c", path, "--since", "40", "--poll-time", "1s")
	require.NoError(t, err)
	assert.Contains(t, out, `"eventId": 41`)
	assert.Contains(t, out, `"text": "hello"`)
	assert.NotContains(t, out, "somethingNew")
	assert.Contains(t, out, "next cursor: 42")

	q := stub.queries["/events/get"][0]
	assert.Contains(t, q, "lastEventId=40")
	assert.Contains(t, q, "pollTime=1")
}

func TestTokenCommands(t *testing.T) {
	keyring.MockInit()

	out, err := execute(t, "001.0000000001.0000000002:700000003\n", "token", "set", "--account", "work")
	require.NoError(t, err)
	assert.Contains(t, out, `account "work"`)
	assert.NotContains(t, out, "0000000002")

	stored, err := keyring.Get("icqbot", "work")
	require.NoError(t, err)
	assert.Equal(t, "001.0000000001.0000000002:700000003", stored)

	_, err = execute(t, "", "token", "delete", "--account", "work")
	require.NoError(t, err)
	_, err = keyring.Get("icqbot", "work")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestTokenSet_EmptyInput(t *testing.T) {
	keyring.MockInit()

	_, err := execute(t, "\n", "token", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}
