package netlink

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SysfsTransport reads the interface's operstate from /sys/class/net
// and shells out to an optional reassociation command. It covers the
// common Linux deployment where wpa_supplicant owns the handshake and
// this daemon only needs to observe carrier state and give the
// supplicant a nudge.
type SysfsTransport struct {
	iface        string
	associateCmd string
	sysRoot      string
	logger       *slog.Logger
}

// NewSysfsTransport creates a transport for the named interface.
// associateCmd may be empty, in which case Associate is a no-op and
// reassociation is left entirely to the supplicant.
func NewSysfsTransport(iface, associateCmd string, logger *slog.Logger) *SysfsTransport {
	return &SysfsTransport{
		iface:        iface,
		associateCmd: associateCmd,
		sysRoot:      "/sys/class/net",
		logger:       logger,
	}
}

// Associated reports whether the interface's operstate is "up".
func (t *SysfsTransport) Associated() (bool, error) {
	data, err := os.ReadFile(filepath.Join(t.sysRoot, t.iface, "operstate"))
	if err != nil {
		return false, fmt.Errorf("read operstate for %s: %w", t.iface, err)
	}
	return strings.TrimSpace(string(data)) == "up", nil
}

// Associate starts the configured reassociation command without waiting
// for it; the handshake outcome shows up later in operstate. The
// command's exit is reaped in the background so it cannot stall the
// control loop.
func (t *SysfsTransport) Associate() error {
	if t.associateCmd == "" {
		return nil
	}

	parts := strings.Fields(t.associateCmd)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start associate command: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			t.logger.Debug("associate command exited with error",
				"cmd", t.associateCmd, "error", err)
		}
	}()
	return nil
}

// InterfaceAddr returns the interface's first IPv4 address, or "" when
// the interface is missing or has none assigned yet.
func InterfaceAddr(iface string) string {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return ""
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipn.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}
