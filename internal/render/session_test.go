package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSessionCreatesExclusiveDir(t *testing.T) {
	root := t.TempDir()

	a, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	b, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if a.Dir == b.Dir {
		t.Error("two sessions must not share a directory")
	}
	if !filepath.IsAbs(a.Dir) {
		t.Errorf("session dir must be absolute: %s", a.Dir)
	}
	for _, s := range []*Session{a, b} {
		if st, err := os.Stat(s.Dir); err != nil || !st.IsDir() {
			t.Errorf("session dir missing: %v", err)
		}
	}
}

func TestSessionCleanupRemovesEverything(t *testing.T) {
	sess, err := NewSession(t.TempDir())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	// Archivos típicos de un job
	for _, p := range []string{
		sess.AudioPath(".mp3"),
		sess.ImagePath(0, ".jpg"),
		sess.ManifestPath(),
		sess.SubtitlePath(),
		sess.OutputPath(),
	} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}

	sess.Cleanup(nil)

	if _, err := os.Stat(sess.Dir); !os.IsNotExist(err) {
		t.Errorf("session dir must be gone after cleanup, stat err=%v", err)
	}

	// Idempotente
	sess.Cleanup(nil)
}

func TestSessionPathsLiveInsideDir(t *testing.T) {
	sess, err := NewSession(t.TempDir())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Cleanup(nil)

	for _, p := range []string{
		sess.AudioPath(""),
		sess.ImagePath(3, ""),
		sess.ManifestPath(),
		sess.SubtitlePath(),
		sess.OutputPath(),
	} {
		if filepath.Dir(p) != sess.Dir {
			t.Errorf("path %s escapes session dir %s", p, sess.Dir)
		}
	}
}
