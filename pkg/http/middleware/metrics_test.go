package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	applogger "OptionStrat/pkg/logger"
)

func TestMetricsWriterSupportsHijack(t *testing.T) {
	h := Metrics(applogger.Nop(), time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, rw, err := http.NewResponseController(w).Hijack()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer conn.Close()
		_, _ = rw.WriteString("HTTP/1.1 101 Switching Protocols\r\nConnection: close\r\n\r\nhijacked")
		_ = rw.Flush()
	}))
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte("GET /ws HTTP/1.1\r\nHost: test\r\n\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(status, "HTTP/1.1 101") {
		t.Fatalf("status line = %q", status)
	}
}

func TestMetricsWriterFlushAndUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &metricsResponseWriter{ResponseWriter: rec, status: http.StatusOK}
	if w.Unwrap() != rec {
		t.Fatal("Unwrap must return the wrapped writer")
	}
	_, _ = w.Write([]byte("chunk"))
	w.Flush()
	if !rec.Flushed || w.written != 5 {
		t.Fatalf("flushed=%v written=%d", rec.Flushed, w.written)
	}
}
