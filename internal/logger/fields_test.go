package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  google custom search  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "provider" || fields[0].String != "google custom search" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestCommonFields(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     map[string]string
	}{
		{
			name:     "both",
			provider: " gemini ",
			model:    "gemini-2.5-flash",
			want:     map[string]string{FieldProvider: "gemini", FieldModel: "gemini-2.5-flash"},
		},
		{
			name:     "provider only",
			provider: "google custom search",
			want:     map[string]string{FieldProvider: "google custom search"},
		},
		{
			name: "nothing",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := CommonFields(tt.provider, tt.model)
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(fields))
			}
			for _, f := range fields {
				if tt.want[f.Key] != f.String {
					t.Fatalf("field %s: expected %q, got %q", f.Key, tt.want[f.Key], f.String)
				}
			}
		})
	}
}

func TestWithRunID(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithRunID(zap.New(core), "run-1").Info("built search queries")
	WithCommonFields(zap.New(core), "gemini", "model-x").Info("extracting")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()[FieldRunID]; got != "run-1" {
		t.Fatalf("expected run id run-1, got %v", got)
	}
	if got := entries[1].ContextMap()[FieldModel]; got != "model-x" {
		t.Fatalf("expected model field model-x, got %v", got)
	}

	// nil loggers fall back to a no-op logger
	WithRunID(nil, "run-2").Info("ignored")
	WithFields(nil).Info("ignored")
}

func TestNew(t *testing.T) {
	for _, json := range []bool{false, true} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("new logger (json=%v): %v", json, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level to be enabled")
		}
	}
}
