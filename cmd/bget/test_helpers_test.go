package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"bget/internal/bilibili"
	"bget/internal/testsupport"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []string
	// favourites served for media id 42, newest first.
	favourites []fakeFavourite
	listCode   int
}

type fakeFavourite struct {
	AID     int64
	Title   string
	FavTime int64
}

func (f *fakeAPI) record(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, path)
}

func (f *fakeAPI) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, path := range f.requests {
		if strings.HasPrefix(path, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/x/v3/fav/resource/list", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		if f.listCode != 0 {
			writeEnvelope(w, f.listCode, "")
			return
		}
		if r.URL.Query().Get("media_id") != "42" {
			writeEnvelope(w, -404, "")
			return
		}
		medias := make([]string, 0, len(f.favourites))
		for _, fav := range f.favourites {
			medias = append(medias, fmt.Sprintf(`{"id":%d,"type":2,"title":%q,"fav_time":%d}`, fav.AID, fav.Title, fav.FavTime))
		}
		writeEnvelope(w, 0, `{"medias":[`+strings.Join(medias, ",")+`],"has_more":false}`)
	})
	mux.HandleFunc("/x/web-interface/view", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		aid, err := strconv.ParseInt(r.URL.Query().Get("aid"), 10, 64)
		if err != nil {
			t.Errorf("bad aid %q", r.URL.Query().Get("aid"))
			writeEnvelope(w, -400, "")
			return
		}
		writeEnvelope(w, 0, fmt.Sprintf(`{"aid":%d,"bvid":"","title":"item %d","desc":"d","pic":"",
			"pubdate":1700000000,"owner":{"mid":7,"name":"up"},
			"pages":[{"cid":%d,"page":1,"part":"one","duration":10}]}`, aid, aid, aid*10))
	})
	mux.HandleFunc("/x/web-interface/nav", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		writeEnvelope(w, 0, `{"isLogin":true,"mid":7,"uname":"tester","vipStatus":0}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		if strings.HasSuffix(r.URL.Path, ".xml") {
			_, _ = w.Write([]byte(`<?xml version="1.0"?><i></i>`))
			return
		}
		http.NotFound(w, r)
	})
	return mux
}

func writeEnvelope(w http.ResponseWriter, code int, data string) {
	w.Header().Set("Content-Type", "application/json")
	if data == "" {
		data = "null"
	}
	fmt.Fprintf(w, `{"code":%d,"message":"msg %d","data":%s}`, code, code, data)
}

type cliTestEnv struct {
	api        *fakeAPI
	baseDir    string
	configPath string
	outDir     string
	headFile   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("BGET_COOKIES", "")

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	clientOptions = []bilibili.Option{bilibili.WithBaseURLs(srv.URL, srv.URL)}
	t.Cleanup(func() { clientOptions = nil })

	cookies := filepath.Join(base, "cookies.txt")
	testsupport.WriteCookies(t, cookies)

	env := &cliTestEnv{
		api:        api,
		baseDir:    base,
		configPath: filepath.Join(base, "bget.toml"),
		outDir:     filepath.Join(base, "out"),
		headFile:   filepath.Join(base, "head.json"),
	}
	content := fmt.Sprintf(`outdir = %q
cookies = %q
cache_dir = %q
head_file = %q
history_db = %q
log_dir = %q
item_pause = 0
switches = ["danmaku", "meta"]

[logging]
level = "error"

[section.music]
id = 42
outdir = %q
`,
		env.outDir,
		cookies,
		filepath.Join(base, "cache"),
		env.headFile,
		filepath.Join(base, "history.db"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "music"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}
