package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.GetMaxChunks() != 300 {
		t.Errorf("GetMaxChunks() = %d, want 300", s.GetMaxChunks())
	}
	if s.GetMaxRetries() != 3 {
		t.Errorf("GetMaxRetries() = %d, want 3", s.GetMaxRetries())
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.GetMaxChunks() != 300 {
		t.Errorf("GetMaxChunks() = %d, want 300", s.GetMaxChunks())
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `
maxChunks: 50
maxRetries: 5
mainOutputDir: /tmp/downloads
categoryInfo:
  - name: archives
    exts: ["zip", "tar"]
    outputDir: /tmp/downloads/archives
customHeaders:
  X-Api-Key: secret
customCookie: "session=abc"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.GetMaxChunks() != 50 {
		t.Errorf("GetMaxChunks() = %d, want 50", s.GetMaxChunks())
	}
	if s.GetMaxRetries() != 5 {
		t.Errorf("GetMaxRetries() = %d, want 5", s.GetMaxRetries())
	}
	if got := s.OutputDirFor("archive.zip"); got != "/tmp/downloads/archives" {
		t.Errorf("OutputDirFor(archive.zip) = %s, want category dir", got)
	}
	if got := s.OutputDirFor("report.pdf"); got != "/tmp/downloads" {
		t.Errorf("OutputDirFor(report.pdf) = %s, want main output dir", got)
	}
	if got := s.CustomHeaders["X-Api-Key"]; got != "secret" {
		t.Errorf("CustomHeaders[X-Api-Key] = %q, want secret", got)
	}
	if s.CustomCookie != "session=abc" {
		t.Errorf("CustomCookie = %q, want session=abc", s.CustomCookie)
	}
}
