package config

import (
	"os"
	"path/filepath"
	"sync"
)

// HomeEnv names the variable that pins the install root.
const HomeEnv = "UIAUTO_HOME"

var home struct {
	once sync.Once
	dir  string
}

// GetHome returns the install root: $UIAUTO_HOME, else <root> when the
// binary sits in <root>/bin, else the working directory.
func GetHome() string {
	home.once.Do(func() { home.dir = resolveHome() })
	return home.dir
}

// GetDriversDir returns <home>/drivers/<platform>. For "android" it holds
// the UIAutomator2 server and test APKs.
func GetDriversDir(platform string) string {
	return filepath.Join(GetHome(), "drivers", platform)
}

func resolveHome() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	if root, ok := installRoot(); ok {
		return root
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// installRoot reports the parent of the executable's bin directory.
func installRoot() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	bin := filepath.Dir(exe)
	if filepath.Base(bin) != "bin" {
		return "", false
	}
	return filepath.Dir(bin), true
}

// ResetHome drops the cached home so tests can change the environment.
func ResetHome() {
	home.once = sync.Once{}
	home.dir = ""
}
