package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Report opens a written report. CSV goes to $EDITOR (less when unset),
// spreadsheets go to the desktop's default application.
func Report(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	var cmd *exec.Cmd
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		cmd = systemCommand(runtime.GOOS, path)
	} else {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "less"
		}
		// line 2 skips the header
		cmd = editorCommand(editor, path, 2)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}

func systemCommand(goos, filePath string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", filePath)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", filePath)
	default:
		return exec.Command("xdg-open", filePath)
	}
}
