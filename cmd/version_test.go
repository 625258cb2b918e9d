package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jifma-project/jifmactl/internal/output"
)

func setupVersionTest(t *testing.T) *bytes.Buffer {
	t.Helper()
	SetBuildInfo("abc1234", "2026-02-06T07:16:38Z")
	return setupCmdTest(t, nil)
}

func TestVersionOutput_ContainsFields(t *testing.T) {
	buf := setupVersionTest(t)

	if err := run(t, nil, "version"); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "jifmactl version") {
		t.Errorf("version output missing program name. Got:\n%s", out)
	}
	for _, field := range []string{"commit:", "built:", "go version:", "platform:", "api:"} {
		if !strings.Contains(out, field) {
			t.Errorf("version output missing %q field. Got:\n%s", field, out)
		}
	}
}

func TestVersionShort(t *testing.T) {
	buf := setupVersionTest(t)

	if err := run(t, nil, "version", "--short"); err != nil {
		t.Fatalf("version --short failed: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line, got %d: %q", len(lines), out)
	}
}

func TestVersionJSON(t *testing.T) {
	buf := setupVersionTest(t)

	if err := run(t, nil, "version", "--json"); err != nil {
		t.Fatalf("version --json failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\nGot: %s", err, buf.String())
	}

	for _, key := range []string{"version", "commit", "built", "go_version", "platform", "api"} {
		if _, ok := result[key]; !ok {
			t.Errorf("JSON output missing key %q. Got: %v", key, result)
		}
	}
	if _, ok := result["check"]; ok {
		t.Errorf("check should be omitted without --check. Got: %v", result)
	}
}

func TestVersionCheck_Reachable(t *testing.T) {
	api := newFakeAPI()
	api.seed("sports",
		map[string]any{"sport_id": 1, "name": "Futsal", "type": "Coletiva"},
		map[string]any{"sport_id": 2, "name": "Xadrez", "type": "Individual"},
	)
	SetBuildInfo("abc1234", "2026-02-06T07:16:38Z")
	buf := setupCmdTest(t, api)

	if err := run(t, nil, "version", "--check", "--json"); err != nil {
		t.Fatalf("version --check failed: %v", err)
	}

	var result versionInfo
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\nGot: %s", err, buf.String())
	}
	if result.Check == nil || !result.Check.Reachable || result.Check.Sports != 2 {
		t.Errorf("expected a reachable API with 2 sports, got %+v", result.Check)
	}
}

func TestVersionCheck_Unreachable(t *testing.T) {
	buf := setupVersionTest(t)
	t.Setenv("JIFMACTL_API_BASE_URL", "http://127.0.0.1:1")

	err := run(t, nil, "version", "--check")
	if code := toCLIError(err).ExitCode; code != output.ExitRemoteError {
		t.Errorf("exit code = %d, want %d (err: %v)", code, output.ExitRemoteError, err)
	}
	if !strings.Contains(buf.String(), "api:        http://127.0.0.1:1") {
		t.Errorf("build details should still print. Got:\n%s", buf.String())
	}
}
