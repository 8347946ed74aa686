package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foodbridge/foodbridge/internal/auth"
	"github.com/foodbridge/foodbridge/internal/db"
	"github.com/foodbridge/foodbridge/internal/model"
	"github.com/foodbridge/foodbridge/internal/store"
)

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLevelRouter(&stdout, &stderr, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("hello", "k", "v")
	logger.Warn("careful")
	logger.Error("boom")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("expected debug to be filtered at info level")
	}
	if !strings.Contains(stdout.String(), "hello") || !strings.Contains(stdout.String(), "careful") {
		t.Errorf("expected info and warn on stdout, got %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "boom") {
		t.Error("expected error not on stdout")
	}
	if !strings.Contains(stderr.String(), "boom") {
		t.Errorf("expected error on stderr, got %q", stderr.String())
	}
}

func TestLevelRouterWithAttrs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLevelRouter(&stdout, &stderr, slog.LevelDebug)).With("component", "store")

	logger.Debug("visible")
	if !strings.Contains(stdout.String(), "component=store") || !strings.Contains(stdout.String(), "visible") {
		t.Errorf("expected debug line with attrs, got %q", stdout.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "": slog.LevelInfo,
		"warn": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodbridge.db")

	cmd := rootCmd()
	cmd.SetArgs([]string{"init", "--db", path, "--admin-email", "root@example.org"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening initialized database: %v", err)
	}
	defer database.Close()

	admin, err := store.GetUserByEmail(context.Background(), database, "root@example.org")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if admin == nil || admin.Role != model.RoleAdmin {
		t.Fatalf("expected admin user, got %+v", admin)
	}

	cmd = rootCmd()
	cmd.SetArgs([]string{"init", "--db", path})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected error for existing database, got %v", err)
	}
}

func TestInitDatabasePassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	database, password, err := initDatabase(context.Background(), path, "admin@example.org")
	if err != nil {
		t.Fatalf("initDatabase: %v", err)
	}
	defer database.Close()

	if len(password) != 16 {
		t.Errorf("expected 16 character password, got %d", len(password))
	}
	admin, _ := store.GetUserByEmail(context.Background(), database, "admin@example.org")
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, password) {
		t.Error("expected printed password to match the stored hash")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "foodbridge version ") {
		t.Errorf("unexpected version output %q", out.String())
	}
}
