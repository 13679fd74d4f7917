package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
)

const (
	settingsMCPEnabled = "github.copilot.chat.mcp.enabled"
	settingsMCPServers = "github.copilot.chat.mcp.servers"
	serverKey          = "epiagent"
)

var setupCmd = &cobra.Command{
	Use:   "setup <dir>",
	Short: "Configure a VS Code workspace to use the epiagent MCP server",
	Long: `Write .vscode/mcp.json and merge the Copilot MCP settings into
.vscode/settings.json so the editor launches 'epiagent serve'.

Existing entries for other servers and unrelated settings are preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a valid directory", args[0])
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate the epiagent executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	mcpPath, settingsPath, err := writeWorkspaceConfig(target, exe, []string{"serve"})
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Created %s", mcpPath))
	printOK("", fmt.Sprintf("Updated %s", settingsPath))

	printSection(fmt.Sprintf("epiagent MCP configured for %s", filepath.Base(target)))
	fmt.Fprintf(stdout, "\n  Executable: %s\n", exe)
	fmt.Fprintln(stdout, "\n  Next steps:")
	fmt.Fprintln(stdout, "    1. Reload the VS Code window (Developer: Reload Window)")
	fmt.Fprintf(stdout, "    2. Verify with: %s doctor\n", exe)
	fmt.Fprintln(stdout, "    3. Ask your assistant an epidemiology question")
	return nil
}

// writeWorkspaceConfig writes dir/.vscode/mcp.json and merges dir/.vscode/settings.json.
func writeWorkspaceConfig(dir, command string, args []string) (string, string, error) {
	vscode := filepath.Join(dir, ".vscode")
	if err := os.MkdirAll(vscode, 0o755); err != nil {
		return "", "", fmt.Errorf("cannot create %s: %w", vscode, err)
	}
	entry := map[string]any{"type": "stdio", "command": command, "args": args}

	mcpPath := filepath.Join(vscode, "mcp.json")
	mcpCfg, err := readJSONObject(mcpPath)
	if err != nil {
		return "", "", err
	}
	if _, ok := mcpCfg["inputs"]; !ok {
		mcpCfg["inputs"] = []any{}
	}
	servers, _ := mcpCfg["servers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	servers[serverKey] = entry
	mcpCfg["servers"] = servers
	if err := writeJSONFile(mcpPath, mcpCfg); err != nil {
		return "", "", err
	}

	settingsPath := filepath.Join(vscode, "settings.json")
	settings, err := readJSONObject(settingsPath)
	if err != nil {
		return "", "", err
	}
	settings[settingsMCPEnabled] = true
	legacy, _ := settings[settingsMCPServers].(map[string]any)
	if legacy == nil {
		legacy = map[string]any{}
	}
	legacy[serverKey] = map[string]any{"command": command, "args": args}
	settings[settingsMCPServers] = legacy
	if err := writeJSONFile(settingsPath, settings); err != nil {
		return "", "", err
	}
	return mcpPath, settingsPath, nil
}

// readJSONObject returns an empty map when path does not exist. Comments and
// trailing commas are accepted; they are not preserved on write.
func readJSONObject(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	out := map[string]any{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(jsonc.ToJSON(b), &out); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return out, nil
}

func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
