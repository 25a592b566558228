package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		opts    Options
		level   zapcore.Level
		wantErr bool
	}{
		{name: "prod default", env: "prod", level: zapcore.InfoLevel},
		{name: "local default", env: "local", level: zapcore.DebugLevel},
		{name: "level override", env: "prod", opts: Options{Level: "warn"}, level: zapcore.WarnLevel},
		{name: "json on local", env: "local", opts: Options{Format: "json"}, level: zapcore.DebugLevel},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "prod", opts: Options{Level: "loud"}, wantErr: true},
		{name: "bad format", env: "prod", opts: Options{Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.level) {
				t.Errorf("expected %s to be enabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && l.Core().Enabled(tt.level-1) {
				t.Errorf("expected %s to be disabled", tt.level-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected nop logger, got nil")
	}

	fallback := zap.NewExample()
	if l := FromContextOr(context.Background(), fallback); l != fallback {
		t.Error("expected fallback logger")
	}

	stored := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), stored)
	if l := FromContextOr(ctx, fallback); l != stored {
		t.Error("expected stored logger")
	}
}
