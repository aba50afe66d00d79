package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestRecordLinkClickIDExtractsQueryParam(t *testing.T) {
	ctx := NewContext()
	if !ctx.RecordLinkClickID("app://open?link_click_id=123456") {
		t.Fatal("expected link click id to be recorded")
	}
	if got := ctx.Peek().LinkClickID; got != "123456" {
		t.Fatalf("expected id 123456, got %q", got)
	}
}

func TestRecordLinkClickIDMissingParamIsNoop(t *testing.T) {
	ctx := NewContext()
	if ctx.RecordLinkClickID("app://open?foo=bar") {
		t.Fatal("expected missing param to be a no-op")
	}
	if ctx.RecordLinkClickID("://not-a-url") {
		t.Fatal("expected malformed url to be a no-op")
	}
	if !ctx.Peek().Empty() {
		t.Fatal("expected no identifiers to be stored")
	}
}

func TestRecordOverwritesPriorValue(t *testing.T) {
	ctx := NewContext()
	ctx.RecordUniversalLink("https://example.app.link/first")
	ctx.RecordUniversalLink("https://example.app.link/second")
	if got := ctx.Peek().UniversalLink; got != "https://example.app.link/second" {
		t.Fatalf("expected latest link to win, got %q", got)
	}
}

func TestTryOpenIsOncePerWindow(t *testing.T) {
	ctx := NewContext()

	id, ok := ctx.TryOpen()
	if !ok || id.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected first TryOpen to succeed with a window id")
	}
	if _, ok := ctx.TryOpen(); ok {
		t.Fatal("expected second TryOpen in the same window to fail")
	}

	ctx.MarkBackground()
	if _, ok := ctx.TryOpen(); !ok {
		t.Fatal("expected TryOpen to succeed after background reset")
	}
}

func TestTryOpenUnderContention(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ctx.TryOpen(); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestTakeIdentifiersClearsSlots(t *testing.T) {
	ctx := NewContext()
	ctx.RecordUniversalLink("https://example.app.link/promo")
	ctx.RecordLinkClickID("app://open?link_click_id=42")

	ids := ctx.TakeIdentifiers()
	if ids.UniversalLink != "https://example.app.link/promo" || ids.LinkClickID != "42" {
		t.Fatalf("unexpected snapshot: %+v", ids)
	}
	if !ctx.Peek().Empty() {
		t.Fatal("expected slots to be cleared after take")
	}
	if !ctx.TakeIdentifiers().Empty() {
		t.Fatal("expected second take to be empty")
	}
}

func TestMarkBackgroundKeepsIdentifiers(t *testing.T) {
	ctx := NewContext()
	ctx.RecordLinkClickID("app://open?link_click_id=late")
	ctx.MarkBackground()
	if ctx.Peek().LinkClickID != "late" {
		t.Fatal("expected identifiers to survive background reset")
	}
}

func TestConcurrentRecordsNeverCorruptSnapshot(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.RecordLinkClickID(fmt.Sprintf("app://open?link_click_id=%d", i))
		}()
	}
	wg.Wait()

	ids := ctx.TakeIdentifiers()
	if ids.LinkClickID == "" {
		t.Fatal("expected one of the racing writes to win")
	}
}
