package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return out
}

func TestWriteWorkspaceConfig_Fresh(t *testing.T) {
	dir := t.TempDir()
	mcpPath, settingsPath, err := writeWorkspaceConfig(dir, "/usr/local/bin/epiagent", []string{"serve"})
	if err != nil {
		t.Fatalf("writeWorkspaceConfig: %v", err)
	}
	if mcpPath != filepath.Join(dir, ".vscode", "mcp.json") {
		t.Fatalf("unexpected mcp path %s", mcpPath)
	}

	mcpCfg := readJSON(t, mcpPath)
	server := mcpCfg["servers"].(map[string]any)["epiagent"].(map[string]any)
	if server["command"] != "/usr/local/bin/epiagent" {
		t.Errorf("command = %v", server["command"])
	}
	if args := server["args"].([]any); len(args) != 1 || args[0] != "serve" {
		t.Errorf("args = %v", args)
	}
	if _, ok := mcpCfg["inputs"]; !ok {
		t.Error("inputs key missing")
	}

	settings := readJSON(t, settingsPath)
	if settings[settingsMCPEnabled] != true {
		t.Errorf("%s not enabled", settingsMCPEnabled)
	}
	if _, ok := settings[settingsMCPServers].(map[string]any)["epiagent"]; !ok {
		t.Errorf("%s.epiagent missing", settingsMCPServers)
	}
}

func TestWriteWorkspaceConfig_PreservesExisting(t *testing.T) {
	dir := t.TempDir()
	vscode := filepath.Join(dir, ".vscode")
	if err := os.MkdirAll(vscode, 0o755); err != nil {
		t.Fatal(err)
	}
	existingMCP := `{"servers": {"other": {"command": "other-server"}}}`
	existingSettings := `{"editor.tabSize": 2, "github.copilot.chat.mcp.servers": {"other": {"command": "x"}}}`
	if err := os.WriteFile(filepath.Join(vscode, "mcp.json"), []byte(existingMCP), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(vscode, "settings.json"), []byte(existingSettings), 0o644); err != nil {
		t.Fatal(err)
	}

	mcpPath, settingsPath, err := writeWorkspaceConfig(dir, "epiagent", []string{"serve"})
	if err != nil {
		t.Fatalf("writeWorkspaceConfig: %v", err)
	}

	servers := readJSON(t, mcpPath)["servers"].(map[string]any)
	if _, ok := servers["other"]; !ok {
		t.Error("existing mcp server was dropped")
	}
	if _, ok := servers["epiagent"]; !ok {
		t.Error("epiagent server not added")
	}

	settings := readJSON(t, settingsPath)
	if settings["editor.tabSize"] != 2.0 {
		t.Errorf("unrelated setting lost: %v", settings["editor.tabSize"])
	}
	legacy := settings[settingsMCPServers].(map[string]any)
	if _, ok := legacy["other"]; !ok {
		t.Error("existing settings server was dropped")
	}
}

func TestWriteWorkspaceConfig_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	vscode := filepath.Join(dir, ".vscode")
	if err := os.MkdirAll(vscode, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(vscode, "settings.json"), []byte(`{"editor.tabSize": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := writeWorkspaceConfig(dir, "epiagent", []string{"serve"}); err == nil {
		t.Fatal("expected an error for truncated settings.json")
	}
}

func TestWriteWorkspaceConfig_CommentedSettings(t *testing.T) {
	dir := t.TempDir()
	vscode := filepath.Join(dir, ".vscode")
	if err := os.MkdirAll(vscode, 0o755); err != nil {
		t.Fatal(err)
	}
	commented := "{\n  // user preference\n  \"files.trimTrailingWhitespace\": true,\n}\n"
	if err := os.WriteFile(filepath.Join(vscode, "settings.json"), []byte(commented), 0o644); err != nil {
		t.Fatal(err)
	}

	_, settingsPath, err := writeWorkspaceConfig(dir, "epiagent", []string{"serve"})
	if err != nil {
		t.Fatalf("writeWorkspaceConfig: %v", err)
	}
	settings := readJSON(t, settingsPath)
	if settings["files.trimTrailingWhitespace"] != true {
		t.Errorf("commented setting lost: %v", settings)
	}
	if settings[settingsMCPEnabled] != true {
		t.Errorf("%s not enabled", settingsMCPEnabled)
	}
}
