package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"go.uber.org/goleak"

	"subsync/internal/config"
	"subsync/internal/logging"
	"subsync/internal/providers"
	"subsync/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

func TestServerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, err := New(testConfig(t), okHandler(), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if srv.Addr() != "" {
		t.Fatal("expected empty address after Stop")
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("second Stop should be a no-op: %v", err)
	}
}

func TestServerRefusesSecondInstance(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig(t)
	first, err := New(cfg, okHandler(), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, okHandler(), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, err := New(testConfig(t), okHandler(), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Serve(ctx); err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestBuildComponentsSkipsProvidersWithoutKeys(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenSubtitles.APIKey = ""
	cfg.SubDL.APIKey = ""

	comps, err := BuildComponents(context.Background(), cfg, logging.NewNop(), ComponentOptions{SkipTranslator: true})
	if err != nil {
		t.Fatalf("BuildComponents: %v", err)
	}
	defer comps.Close()
	if kinds := comps.Registry.Kinds(); len(kinds) != 0 {
		t.Fatalf("expected no providers, got %v", kinds)
	}
	if comps.LanguageSource() != nil {
		t.Fatal("expected nil language source without opensubtitles")
	}
	if comps.Translator != nil {
		t.Fatal("translator should be skipped")
	}
}

func TestBuildComponentsWiresEverything(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenSubtitles.APIKey = "os-key"
	cfg.SubDL.APIKey = "subdl-key"

	comps, err := BuildComponents(context.Background(), cfg, logging.NewNop(), ComponentOptions{})
	if err != nil {
		t.Fatalf("BuildComponents: %v", err)
	}
	defer comps.Close()

	kinds := comps.Registry.Kinds()
	if len(kinds) != 2 || kinds[0] != providers.KindOpenSubtitles || kinds[1] != providers.KindSubDL {
		t.Fatalf("unexpected providers %v", kinds)
	}
	if comps.Translator == nil || comps.Translator.Engine().Name() != "libretranslate" {
		t.Fatal("expected libretranslate translator")
	}
	if comps.Memory == nil || comps.Memory.Path() != cfg.TranslationMemoryPath() {
		t.Fatal("expected translation memory in data dir")
	}
	if got := comps.Catalog.SearchLanguages(); len(got) != 1 || got[0] != "en" {
		t.Fatalf("unexpected catalog search languages %v", got)
	}
}

func TestBuildComponentsRejectsBadEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Translate.Engine = "gemini"
	cfg.Translate.GeminiAPIKey = ""
	if _, err := BuildComponents(context.Background(), cfg, logging.NewNop(), ComponentOptions{}); err == nil {
		t.Fatal("expected error for gemini without key")
	}
}
