package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"assetvault/internal/config"
	"assetvault/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("ASSETVAULT_LIBRARY_DIR", "")

	configPath := filepath.Join(base, "assetvault.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func runJSON(t *testing.T, env *cliTestEnv, v any, args ...string) {
	t.Helper()
	out, _, err := runCLI(t, env.configPath, append([]string{"--json"}, args...)...)
	if err != nil {
		t.Fatalf("assetvault %s: %v", strings.Join(args, " "), err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode %s output: %v\n%s", args[0], err, out)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q\n%s", substr, output)
	}
}

func importFixture(t *testing.T, env *cliTestEnv, name string, extra ...string) assetJSON {
	t.Helper()
	src := filepath.Join(env.baseDir, "incoming", name)
	testsupport.WriteImage(t, src, 24, 24)
	var result struct {
		Imported []assetJSON `json:"imported"`
	}
	runJSON(t, env, &result, append([]string{"import", src}, extra...)...)
	if len(result.Imported) != 1 {
		t.Fatalf("expected one imported asset, got %+v", result)
	}
	return result.Imported[0]
}

func TestCLIImportListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	first := importFixture(t, env, "hero.png", "--advertiser", "Acme", "--year", "2023")
	importFixture(t, env, "alt.png", "--advertiser", "Globex", "--year", "2024")

	var listed []assetJSON
	runJSON(t, env, &listed, "list", "--advertiser", "Acme")
	if len(listed) != 1 || listed[0].ID != first.ID {
		t.Fatalf("list --advertiser Acme = %+v", listed)
	}

	runJSON(t, env, &listed, "list", "--sort", "year", "--order", "asc")
	if len(listed) != 2 || listed[0].ID != first.ID {
		t.Fatalf("list sorted by year = %+v", listed)
	}

	out, _, err := runCLI(t, env.configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Advertiser")
	requireContains(t, out, "Globex")

	out, _, err = runCLI(t, env.configPath, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "image/png")
	requireContains(t, out, "Acme")

	if _, _, err := runCLI(t, env.configPath, "list", "--sort", "path"); err == nil {
		t.Fatal("expected unknown sort field to fail")
	}
}

func TestCLIImportReportsPerFileErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	notes := filepath.Join(env.baseDir, "incoming", "notes.txt")
	testsupport.WriteFile(t, notes, 10)

	out, _, err := runCLI(t, env.configPath, "import", notes)
	if err == nil {
		t.Fatal("expected failure when nothing imports")
	}
	requireContains(t, out, "notes.txt")
	requireContains(t, out, "not allowed")
}

func TestCLIVersionWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	master := importFixture(t, env, "hero.png")
	loose := importFixture(t, env, "alt.png")

	var ref versionRefJSON
	runJSON(t, env, &ref, "version", "create", "1")
	if ref.VersionNo != 2 {
		t.Fatalf("version create = %+v", ref)
	}

	runJSON(t, env, &ref, "version", "attach", "2", "1")
	if ref.ID != loose.ID || ref.VersionNo != 3 {
		t.Fatalf("version attach = %+v", ref)
	}

	if _, _, err := runCLI(t, env.configPath, "version", "promote", "2"); err != nil {
		t.Fatalf("version promote: %v", err)
	}

	var group []assetJSON
	runJSON(t, env, &group, "version", "list", "1")
	if len(group) != 3 {
		t.Fatalf("group size = %d", len(group))
	}
	for _, a := range group {
		if a.ID == loose.ID {
			if a.MasterID != nil || a.VersionNo != 1 {
				t.Fatalf("promoted asset should be master v1: %+v", a)
			}
			continue
		}
		if a.MasterID == nil || *a.MasterID != loose.ID {
			t.Fatalf("member %d not re-pointed: %+v", a.ID, a)
		}
	}

	_, _, err := runCLI(t, env.configPath, "delete", "2")
	if err == nil || !strings.Contains(err.Error(), "has versions") {
		t.Fatalf("delete of master with versions error = %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "version", "detach", "1"); err != nil {
		t.Fatalf("version detach: %v", err)
	}
	var shown struct {
		Asset assetJSON `json:"asset"`
	}
	runJSON(t, env, &shown, "show", "1")
	if shown.Asset.ID != master.ID || shown.Asset.MasterID != nil {
		t.Fatalf("detached asset = %+v", shown.Asset)
	}
}

func TestCLIUpdateAndBulkUpdate(t *testing.T) {
	env := setupCLITestEnv(t)
	importFixture(t, env, "a.png")
	importFixture(t, env, "b.png")

	var updated assetJSON
	runJSON(t, env, &updated, "update", "1", "--set", "niche=beauty", "--set", "shares=12")
	if updated.Niche == nil || *updated.Niche != "beauty" || updated.Shares == nil || *updated.Shares != 12 {
		t.Fatalf("update = %+v", updated)
	}

	if _, _, err := runCLI(t, env.configPath, "update", "1", "--set", "shares=lots"); err == nil {
		t.Fatal("expected malformed shares to fail")
	}

	out, _, err := runCLI(t, env.configPath, "--json", "bulk-update", "--ids", "1,2,99", "--set", "year=2025")
	if err == nil || !strings.Contains(err.Error(), "partial failure") {
		t.Fatalf("bulk-update error = %v", err)
	}
	var result bulkResultJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode bulk result: %v\n%s", err, out)
	}
	if result.UpdatedCount != 2 || len(result.Errors) != 1 || result.Errors[0].ID != 99 {
		t.Fatalf("bulk result = %+v", result)
	}

	var listed []assetJSON
	runJSON(t, env, &listed, "list", "--year", "2025")
	if len(listed) != 2 {
		t.Fatalf("expected both assets in 2025, got %d", len(listed))
	}
}

func TestCLIFieldsStatsAndDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	importFixture(t, env, "a.png")

	var field customFieldJSON
	runJSON(t, env, &field, "field", "define", "campaign", "--type", "text")
	if field.Name != "campaign" || field.Type != "text" {
		t.Fatalf("field define = %+v", field)
	}
	if _, _, err := runCLI(t, env.configPath, "field", "set", "1", "1", "spring"); err != nil {
		t.Fatalf("field set: %v", err)
	}
	var shown struct {
		CustomValues []customValueJSON `json:"customValues"`
	}
	runJSON(t, env, &shown, "show", "1")
	if len(shown.CustomValues) != 1 || shown.CustomValues[0].Value == nil || *shown.CustomValues[0].Value != "spring" {
		t.Fatalf("custom values = %+v", shown.CustomValues)
	}

	var stats map[string]int64
	runJSON(t, env, &stats, "stats")
	if stats["assets"] != 1 || stats["masters"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	out, _, _ := runCLI(t, env.configPath, "doctor")
	requireContains(t, out, "Database")
	requireContains(t, out, "Version groups")
}

func TestCLIThumbnailsRegenerate(t *testing.T) {
	env := setupCLITestEnv(t)
	importFixture(t, env, "a.png")

	if _, _, err := runCLI(t, env.configPath, "thumbnails", "regenerate"); err == nil {
		t.Fatal("expected regenerate to fail while thumbnails are disabled")
	}

	env.cfg.Thumbnails.Enabled = true
	writeTestConfig(t, env.configPath, env.cfg)
	var result map[string]int
	runJSON(t, env, &result, "thumbnails", "regenerate")
	if result["generated"] != 1 || result["failed"] != 0 {
		t.Fatalf("regenerate = %+v", result)
	}
}

func TestCLIConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "generated", "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, target)

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected config init to refuse overwriting")
	}

	out, _, err = runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.LibraryDir)
}

func TestCLILogsFiltersByAsset(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := env.cfg.LogFilePath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	content := "INFO asset created asset_id=3 request_id=a\n" +
		"INFO asset created asset_id=4 request_id=b\n" +
		"INFO asset updated asset_id=3 request_id=c\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "logs", "--asset", "3", "-n", "1")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "INFO asset updated asset_id=3 request_id=c" {
		t.Fatalf("logs output = %q", out)
	}

	out, _, err = runCLI(t, env.configPath, "logs", "--request", "b")
	if err != nil {
		t.Fatalf("logs --request: %v", err)
	}
	requireContains(t, out, "asset_id=4")
}
