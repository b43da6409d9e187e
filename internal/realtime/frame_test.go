package realtime

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := NewFrame(CmdSend, "destination", "/app/docs.edit", "content-type", "application/json")
	f.Body = []byte(`{"documentIdx":"abc"}`)

	parsed, err := ParseFrame(f.Marshal())
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if parsed.Command != CmdSend {
		t.Errorf("expected command %q, got %q", CmdSend, parsed.Command)
	}
	if parsed.Headers["destination"] != "/app/docs.edit" {
		t.Errorf("expected destination header, got %q", parsed.Headers["destination"])
	}
	if !bytes.Equal(parsed.Body, f.Body) {
		t.Errorf("expected body %q, got %q", f.Body, parsed.Body)
	}
}

func TestParseFrame_HeaderOnly(t *testing.T) {
	f, err := ParseFrame([]byte("CONNECTED\nversion:1.2\n\n\x00"))
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if f.Command != CmdConnected {
		t.Errorf("expected %q, got %q", CmdConnected, f.Command)
	}
	if f.Headers["version"] != "1.2" {
		t.Errorf("expected version header, got %q", f.Headers["version"])
	}
	if len(f.Body) != 0 {
		t.Errorf("expected empty body, got %q", f.Body)
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no header terminator", data: "SEND\ndestination:/x\x00"},
		{name: "header without colon", data: "SEND\nbroken header\n\n\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrame([]byte(tt.data)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestApply_DiscardsStaleSequence(t *testing.T) {
	s := &Session{}

	if !s.apply(DocumentUpdate{Title: "v2", Content: "second", Seq: 2}) {
		t.Fatal("expected the first update to apply")
	}
	if s.apply(DocumentUpdate{Title: "v1", Content: "first", Seq: 1}) {
		t.Error("expected an older sequence to be discarded")
	}
	if s.apply(DocumentUpdate{Title: "v2b", Content: "replay", Seq: 2}) {
		t.Error("expected an equal sequence to be discarded")
	}

	title, content, seq := s.Snapshot()
	if title != "v2" || content != "second" || seq != 2 {
		t.Errorf("expected buffer to hold seq 2, got %q/%q at seq %d", title, content, seq)
	}

	if !s.apply(DocumentUpdate{Title: "v3", Content: "third", Seq: 3}) {
		t.Error("expected a newer sequence to apply")
	}
}
