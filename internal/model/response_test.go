package model

import (
	"net/http"
	"testing"
)

func TestResponseSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{200, true},
		{201, true},
		{299, true},
		{301, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		resp := &Response{StatusCode: tt.status}
		if got := resp.Success(); got != tt.want {
			t.Errorf("Success() with status %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestResponseContentType(t *testing.T) {
	t.Parallel()

	t.Run("strips parameters", func(t *testing.T) {
		t.Parallel()

		h := http.Header{}
		h.Set("Content-Type", "text/html; charset=iso-8859-1")
		resp := &Response{Header: h}
		if got := resp.ContentType(); got != "text/html" {
			t.Errorf("ContentType() = %q, want %q", got, "text/html")
		}
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		resp := &Response{Header: http.Header{}}
		if got := resp.ContentType(); got != "" {
			t.Errorf("ContentType() = %q, want empty", got)
		}
	})
}

func TestDetectContentKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mediaType string
		body      string
		want      ContentKind
	}{
		{"html header", "text/html", "<p>hi</p>", KindHTML},
		{"xhtml header", "application/xhtml+xml", "", KindHTML},
		{"json header", "application/json", `{"a":1}`, KindJSON},
		{"json suffix", "application/ld+json", `{}`, KindJSON},
		{"plain text", "text/plain", "hello", KindText},
		{"csv text", "text/csv", "a,b", KindText},
		{"sniff html doctype", "", "<!DOCTYPE html><html></html>", KindHTML},
		{"sniff html tag", "", "  \n<html lang=\"en\">", KindHTML},
		{"sniff json object", "", `{"items":[]}`, KindJSON},
		{"sniff json array", "", "[1,2,3]", KindJSON},
		{"sniff plain text", "", "just some words", KindText},
		{"sniff binary", "", "\x89PNG\r\n\x1a\x00", KindBinary},
		{"octet stream sniffed", "application/octet-stream", "readable text", KindText},
		{"image header", "image/png", "\x89PNG", KindBinary},
		{"unknown but texty", "application/x-unknown", "key=value", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DetectContentKind(tt.mediaType, []byte(tt.body))
			if got != tt.want {
				t.Errorf("DetectContentKind(%q, %q) = %q, want %q", tt.mediaType, tt.body, got, tt.want)
			}
		})
	}
}
