package commands

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
	"github.com/danmuck/hyperionctl/internal/testutil/fakehyperion"
	"github.com/danmuck/hyperionctl/internal/testutil/testlog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func serverArgs(srv *fakehyperion.Server) []string {
	return []string{"--address", srv.Host(), "--port", strconv.Itoa(int(srv.Port())), "--log-level", "warn"}
}

func TestColorCommandRegistersThenSetsColor(t *testing.T) {
	testlog.Start(t)
	srv := fakehyperion.Start(t, nil)

	args := append([]string{"color", "#ff8000", "--priority", "120", "--origin", "desk"}, serverArgs(srv)...)
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("color: %v (%s)", err, out)
	}
	if !strings.Contains(out, "reply{") {
		t.Fatalf("expected reply printed, got %q", out)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	reg, ok := reqs[0].(message.Register)
	if !ok || reg.Origin != "desk" || reg.Priority != 120 {
		t.Fatalf("unexpected register: %#v", reqs[0])
	}
	c, ok := reqs[1].(message.Color)
	if !ok || c.ARGB != 0x00ff8000 || c.Duration != message.DurationInfinite {
		t.Fatalf("unexpected color: %#v", reqs[1])
	}
}

func TestColorCommandReportsRejection(t *testing.T) {
	testlog.Start(t)
	handler := fakehyperion.RejectCommand(hyperionnet.CommandColor, "no effect engine", fakehyperion.DefaultHandler)
	srv := fakehyperion.Start(t, handler)

	_, err := execute(t, append([]string{"color", "00ff00"}, serverArgs(srv)...)...)
	var rejected *message.RejectedError
	if !errors.As(err, &rejected) || rejected.Reason != "no effect engine" {
		t.Fatalf("expected RejectedError, got %v", err)
	}
}

func TestClearCommand(t *testing.T) {
	testlog.Start(t)
	srv := fakehyperion.Start(t, nil)

	if _, err := execute(t, append([]string{"clear", "--priority", "90"}, serverArgs(srv)...)...); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := execute(t, append([]string{"clear", "--all"}, serverArgs(srv)...)...); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if c, ok := reqs[0].(message.Clear); !ok || c.Priority != 90 {
		t.Fatalf("unexpected clear: %#v", reqs[0])
	}
	if c, ok := reqs[1].(message.Clear); !ok || c.Priority != message.PriorityAll {
		t.Fatalf("unexpected clear all: %#v", reqs[1])
	}
}

func TestPriorityFlagOutOfRange(t *testing.T) {
	testlog.Start(t)
	srv := fakehyperion.Start(t, nil)

	_, err := execute(t, append([]string{"color", "ff0000", "--priority", "100000"}, serverArgs(srv)...)...)
	if err == nil || !strings.Contains(err.Error(), "priority") {
		t.Fatalf("expected priority range error, got %v", err)
	}
	if srv.Accepted() != 0 || len(srv.Requests()) != 0 {
		t.Fatalf("out-of-range priority must fail before dialing")
	}
}

func TestImageCommandSendsScaledImage(t *testing.T) {
	testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	path := writeTestPNG(t)

	args := append([]string{"image", path, "--width", "4", "--height", "2", "--duration", "1000"}, serverArgs(srv)...)
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("image: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 2 || reqs[0].Command() != hyperionnet.CommandRegister {
		t.Fatalf("expected register then image, got %d requests", len(reqs))
	}
	img := reqs[1].(message.Image)
	raw := img.Data.(message.RawImage)
	if raw.Width != 4 || raw.Height != 2 || len(raw.Data) != 24 || img.Duration != 1000 {
		t.Fatalf("unexpected image %dx%d (%d bytes) duration %d", raw.Width, raw.Height, len(raw.Data), img.Duration)
	}
}

func TestDumpThenInspect(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()

	colorDump := filepath.Join(dir, "color.bin")
	if _, err := execute(t, "color", "ff8000", "--duration", "5000", "--dump", colorDump); err != nil {
		t.Fatalf("color dump: %v", err)
	}
	out, err := execute(t, "inspect", colorDump)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"frame:", "command: Color", "color: #ff8000", "duration: 5000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	imageDump := filepath.Join(dir, "image.bin")
	if _, err := execute(t, "image", writeTestPNG(t), "--width", "3", "--height", "2", "--dump", imageDump); err != nil {
		t.Fatalf("image dump: %v", err)
	}
	framed, err := os.ReadFile(imageDump)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	bare := filepath.Join(dir, "image.bare")
	if err := os.WriteFile(bare, framed[4:], 0o600); err != nil {
		t.Fatalf("write bare: %v", err)
	}
	out, err = execute(t, "inspect", bare)
	if err != nil {
		t.Fatalf("inspect bare: %v", err)
	}
	for _, want := range []string{"bare payload:", "command: Image", "size: 3x2", "bytes: 18"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, []byte{0, 0, 0, 2, 0xff, 0xff}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execute(t, "inspect", path); !errors.Is(err, protocol.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "hyperionctl.toml")

	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatalf("expected init to refuse overwrite")
	}
	if _, err := execute(t, "config", "init", "--force", path); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, err = execute(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "localhost:19400") {
		t.Fatalf("unexpected validate output %q", out)
	}
}

func TestSettingsFlagsOverrideFile(t *testing.T) {
	testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	path := filepath.Join(t.TempDir(), "hyperionctl.toml")
	body := "address = \"" + srv.Host() + "\"\nport = " + strconv.Itoa(int(srv.Port())) +
		"\npriority = 50\n\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := execute(t, "--config", path, "--priority", "60", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if c, ok := reqs[0].(message.Clear); !ok || c.Priority != 60 {
		t.Fatalf("flag priority should win over file, got %#v", reqs[0])
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{in: "ff8000", r: 0xff, g: 0x80},
		{in: "#0000FF", b: 0xff},
		{in: "fff", wantErr: true},
		{in: "gg0000", wantErr: true},
	}
	for _, tc := range cases {
		r, g, b, err := parseHexColor(tc.in)
		if tc.wantErr {
			if !errors.Is(err, protocol.ErrValidation) {
				t.Fatalf("%s: expected ErrValidation, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || r != tc.r || g != tc.g || b != tc.b {
			t.Fatalf("%s: got %d,%d,%d err=%v", tc.in, r, g, b, err)
		}
	}
}

func writeTestPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "still.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}
