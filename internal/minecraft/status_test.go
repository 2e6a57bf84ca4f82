package minecraft

import (
	"slices"
	"testing"
)

const samplePing = `{
	"version": {"name": "Paper 1.20.4", "protocol": 765},
	"players": {
		"max": 100,
		"online": 5,
		"sample": [
			{"name": "thinkofdeath", "id": "4566e69f-c907-48ee-8d71-d7ba5aa00d20"},
			{"name": "Anonymous Player", "id": "00000000-0000-0000-0000-000000000000"},
			{"name": "Notch", "id": "069a79f4-44e9-4726-a5be-fca90e38aaf5"}
		]
	},
	"description": {"text": "Hello world"},
	"favicon": "data:image/png;base64,<data>"
}`

func TestDecodeStatus(t *testing.T) {
	st, err := decodeStatus([]byte(samplePing))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Players.Online != 5 || st.Players.Max != 100 {
		t.Fatalf("unexpected counts %+v", st.Players)
	}
	if st.Version.Protocol != 765 || st.Version.Name != "Paper 1.20.4" {
		t.Fatalf("unexpected version %+v", st.Version)
	}
	if len(st.Players.Sample) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(st.Players.Sample))
	}
	if string(st.Description) != `{"text": "Hello world"}` {
		t.Fatalf("unexpected description %s", st.Description)
	}
}

func TestDecodeStatusWithoutSample(t *testing.T) {
	st, err := decodeStatus([]byte(`{"version":{"name":"1.20.4","protocol":765},"players":{"max":20,"online":0},"description":"A Minecraft Server"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Players.Sample != nil {
		t.Fatalf("expected no sample, got %v", st.Players.Sample)
	}
	if names := st.SampleNames("Anonymous Player"); len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
}

func TestDecodeStatusRejectsGarbage(t *testing.T) {
	if _, err := decodeStatus([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSampleNamesSkipsPlaceholder(t *testing.T) {
	st, err := decodeStatus([]byte(samplePing))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := st.SampleNames("Anonymous Player")
	want := []string{"thinkofdeath", "Notch"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
