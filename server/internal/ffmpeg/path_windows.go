//go:build windows

package ffmpeg

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows/registry"
)

// legacy location some older installers hardcoded; dropped on update
const legacyBinPath = `C:\ffmpeg\bin`

var (
	user32              = syscall.NewLazyDLL("user32.dll")
	sendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

const (
	hwndBroadcast   = 0xFFFF
	wmSettingChange = 0x1A
	smtoAbortIfHung = 0x0002
)

// registerPath adds dir to the user's persistent PATH, removing the
// legacy hardcoded location and deduplicating, then broadcasts the
// environment change so running processes pick it up without restart.
func registerPath(dir string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, "Environment", registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	current, _, err := key.GetStringValue("PATH")
	if err != nil && err != registry.ErrNotExist {
		return err
	}

	var paths []string
	for _, p := range strings.Split(current, ";") {
		if p == "" || p == legacyBinPath || p == legacyBinPath+`\` {
			continue
		}
		if p == dir || p == dir+`\` {
			// already registered
			return nil
		}
		paths = append(paths, p)
	}

	paths = append(paths, dir)

	if err := key.SetExpandStringValue("PATH", strings.Join(paths, ";")); err != nil {
		return err
	}

	broadcastEnvironmentChange()
	return nil
}

func broadcastEnvironmentChange() {
	env, _ := syscall.UTF16PtrFromString("Environment")
	var result uintptr
	sendMessageTimeoutW.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		5000,
		uintptr(unsafe.Pointer(&result)),
	)
}
