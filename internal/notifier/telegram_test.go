package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsHTMLMessage(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = server.URL

	require.NoError(t, tn.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetryGivesUp(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = server.URL

	err := tn.SendWithRetry(context.Background(), "hi", 0)
	require.Error(t, err)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestStartPollingDispatchesCommands(t *testing.T) {
	t.Parallel()

	replies := make(chan string, 4)
	served := false
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottoken/getUpdates":
			mu.Lock()
			first := !served
			served = true
			mu.Unlock()
			if first {
				_, _ = w.Write([]byte(`{"ok":true,"result":[
					{"update_id":1,"message":{"text":" /status ","chat":{"id":42}}},
					{"update_id":2,"message":{"text":"/status","chat":{"id":7}}}
				]}`))
				return
			}
			<-r.Context().Done()
		case "/bottoken/sendMessage":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"].(string)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
		return "reply to " + cmd
	})

	select {
	case reply := <-replies:
		assert.Equal(t, "reply to /status", reply)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case extra := <-replies:
		t.Fatalf("unexpected reply %q for foreign chat", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
