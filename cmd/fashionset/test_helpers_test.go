package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fashionset/internal/config"
	"fashionset/internal/testsupport"
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
	cfg.Logging.Level = "warn"

	configPath := filepath.Join(homeDir, ".config", "fashionset", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
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

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteText(t, path, string(data))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writePolyvoreFixture lays out a tiny Polyvore tree with three usable
// outfits under root.
func writePolyvoreFixture(t *testing.T, root string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(root, "categories.csv"),
		"category_id,sub_category,main_category\n1,Tops,tops\n2,Skirts,bottoms\n")
	testsupport.WriteText(t, filepath.Join(root, "polyvore_item_metadata.json"), `{
		"1": {"category_id": "1"},
		"2": {"category_id": "2"},
		"3": {"title": "Wool coat"},
		"4": {"title": "Maxi dress"}
	}`)
	for _, id := range []string{"1", "2", "3", "4"} {
		testsupport.WriteFile(t, filepath.Join(root, "images", id+".jpg"), 16)
	}
	testsupport.WriteText(t, filepath.Join(root, "disjoint", "train.json"), `[
		{"set_id": "a", "items": [{"item_id": "1"}, {"item_id": "2"}]},
		{"set_id": "b", "items": [{"item_id": "3"}, {"item_id": "4"}]},
		{"set_id": "c", "items": [{"item_id": "1"}, {"item_id": "3"}, {"item_id": "4"}]}
	]`)
}
