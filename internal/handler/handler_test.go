package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/keepsake/internal/notice"
)

// fakeSource 手动推送的订阅源
type fakeSource struct {
	mu        sync.Mutex
	callbacks []func([]string)
	cancelled int
}

func (f *fakeSource) Subscribe(cb func([]string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancelled++
	}
}

func (f *fakeSource) push(items ...string) {
	f.mu.Lock()
	cbs := append([]func([]string){}, f.callbacks...)
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(items)
	}
}

func (f *fakeSource) subscribers() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks), f.cancelled
}

func openStream(t *testing.T, engine *gin.Engine, path string) (io.ReadCloser, context.CancelFunc) {
	t.Helper()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	return resp.Body, cancel
}

func TestStreamUpdatesDeliversSnapshots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	src := &fakeSource{}
	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) {
		streamUpdates[[]string](c, "items", src.Subscribe, nil)
	})

	body, cancel := openStream(t, engine, "/stream")
	defer body.Close()

	require.Eventually(t, func() bool {
		n, _ := src.subscribers()
		return n == 1
	}, 2*time.Second, 5*time.Millisecond)
	src.push("a", "b")

	scanner := bufio.NewScanner(body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = v
			break
		}
	}
	assert.Equal(t, "items", event)
	var got []string
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, []string{"a", "b"}, got)

	// 客户端断开后取消订阅
	cancel()
	require.Eventually(t, func() bool {
		_, cancelled := src.subscribers()
		return cancelled == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStreamEndsWhenSessionGone(t *testing.T) {
	heartbeatInterval = 10 * time.Millisecond
	t.Cleanup(func() { heartbeatInterval = 15 * time.Second })

	gin.SetMode(gin.TestMode)
	src := &fakeSource{}
	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) {
		streamUpdates[[]string](c, "items", src.Subscribe, func() bool { return false })
	})

	body, cancel := openStream(t, engine, "/stream")
	defer cancel()
	defer body.Close()

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, body)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end")
	}
}

func TestRespondNoticeStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		n      notice.Notice
		status int
	}{
		{"成功", notice.OK("note_added"), http.StatusOK},
		{"字段缺失", notice.Fail("note_fields_required"), http.StatusBadRequest},
		{"加载中", notice.Fail("board_loading"), http.StatusConflict},
		{"文件过大", notice.Fail("upload_too_large"), http.StatusRequestEntityTooLarge},
		{"写入失败", notice.Fail("note_add_failed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			respondNotice(c, tc.n, nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
