package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
		want float64
	}{
		{"parsed", "187.421000\n", nil, 187.421},
		{"probe failure", "", errors.New("exit status 1"), entities.UnknownDuration},
		{"garbage", "N/A\n", nil, entities.UnknownDuration},
		{"zero", "0.000000\n", nil, entities.UnknownDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{out: tt.out, err: tt.err}
			tools := New(config.MediaConfig{FFprobePath: "/usr/bin/ffprobe"}, WithCommandRunner(r))
			if got := tools.Duration(context.Background(), "a.m4a"); got != tt.want {
				t.Fatalf("Duration = %v, want %v", got, tt.want)
			}
			if r.calls[0][0] != "/usr/bin/ffprobe" || r.calls[0][len(r.calls[0])-1] != "a.m4a" {
				t.Fatalf("unexpected command %v", r.calls[0])
			}
		})
	}
}

func TestClip(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{}
	tools := New(config.MediaConfig{}, WithCommandRunner(r), WithTempDir(dir))

	out, err := tools.Clip(context.Background(), "a.m4a", 95.5, 10)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if filepath.Dir(out) != dir {
		t.Fatalf("clip written to %s, want inside %s", out, dir)
	}
	cmd := strings.Join(r.calls[0], " ")
	for _, part := range []string{"ffmpeg ", "-ss 95.500", "-t 10.000", "-i a.m4a", out} {
		if !strings.Contains(cmd, part) {
			t.Errorf("command %q missing %q", cmd, part)
		}
	}

	r.calls = nil
	if _, err := tools.Clip(context.Background(), "a.m4a", 0, 10); err != nil {
		t.Fatalf("Clip at zero: %v", err)
	}
	if strings.Contains(strings.Join(r.calls[0], " "), "-ss") {
		t.Error("clip at offset zero should not seek")
	}
}

func TestClipFailureRemovesFile(t *testing.T) {
	dir := t.TempDir()
	tools := New(config.MediaConfig{}, WithCommandRunner(&fakeRunner{err: errors.New("boom")}), WithTempDir(dir))
	if _, err := tools.Clip(context.Background(), "a.m4a", 0, 10); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temporary clip left behind: %v", entries)
	}
	if _, err := tools.Clip(context.Background(), "a.m4a", 0, 0); err == nil {
		t.Fatal("expected error for empty clip")
	}
}
