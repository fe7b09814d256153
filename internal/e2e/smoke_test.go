package e2e

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "sk-test-123"

func TestSmokeStatusFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	upstream := newUpstream(t)

	stdout, stderr, err := runPDFMCP(t, binaryPath, home, upstream.URL, "status", "req-1", "--api-key", apiKey)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "[SUCCESS]")
	assert.Contains(t, stdout, "https://cdn.example/req-1.pdf")

	stdout, stderr, err = runPDFMCP(t, binaryPath, home, upstream.URL, "config")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, upstream.URL)
}

func TestSmokeServe(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	upstream := newUpstream(t)
	port := freePort(t)

	cmd := exec.Command(binaryPath, "serve", "--port", fmt.Sprint(port))
	cmd.Env = environ(home, upstream.URL)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "server did not come up")

	resp, err := http.Post(base+"/mcp", "application/json", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"smoke","version":"1"}}}`,
	))
	require.NoError(t, err)
	_ = resp.Body.Close()
	sessionID := resp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)

	req, err := http.NewRequest(http.MethodPost, base+"/mcp", strings.NewReader(
		fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"check_pdf_status","arguments":{"apiKey":%q,"requestId":"req-9"}}}`, apiKey),
	))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Mcp-Session-Id", sessionID)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "https://cdn.example/req-9.pdf")

	require.NoError(t, cmd.Process.Signal(syscall.SIGTERM))
	require.NoError(t, cmd.Wait(), "stderr: %s", stderr.String())

	logs := bufio.NewScanner(&stderr)
	found := false
	for logs.Scan() {
		assert.NotContains(t, logs.Text(), apiKey)
		if strings.Contains(logs.Text(), "mcp server listening") {
			found = true
		}
	}
	assert.True(t, found, "listening log line missing")
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/pdf/status/")
		_, _ = fmt.Fprintf(w, `{"requestId":%q,"renderStatus":"SUCCESS","signedUrl":"https://cdn.example/%s.pdf"}`, id, id)
	}))
	t.Cleanup(server.Close)
	return server
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "pdfmcp-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pdfmcp")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build pdfmcp binary: %s", string(output))
	return binaryPath
}

func environ(home, baseURL string) []string {
	env := make([]string, 0, len(os.Environ())+2)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PDFMCP_") || strings.HasPrefix(kv, "PORT=") || strings.HasPrefix(kv, "PDF_API_BASE_URL=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "HOME="+home, "PDF_API_BASE_URL="+baseURL)
}

func runPDFMCP(t *testing.T, binaryPath, home, baseURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = environ(home, baseURL)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
