package server

import (
	"testing"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
)

func TestNewWiresSubsystems(t *testing.T) {
	cfg, err := config.New("")
	if err != nil {
		t.Fatal(err)
	}
	s := New(cfg, "test")
	if s.ops == nil || s.gate == nil || s.mcp == nil {
		t.Fatal("subsystems not wired")
	}
	if s.gate.Terminal() == nil {
		t.Fatal("terminal manager not wired")
	}
}

func TestJSONResult(t *testing.T) {
	res, err := jsonResult(map[string]any{"ok": true})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.IsError {
		t.Fatalf("result = %+v", res)
	}
}
