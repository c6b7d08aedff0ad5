package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"bget/internal/bilibili"
	"bget/internal/config"
	"bget/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCookies verifies the credentials file parses. A file without a
// session cookie passes with a warning: public items stay reachable.
func CheckCookies(path string, now time.Time) Result {
	const name = "Cookies"
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	cookies, err := bilibili.LoadCookies(path, now)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !bilibili.HasSession(cookies) {
		return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("%s (warning: no SESSDATA cookie; only public content is reachable)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d cookies)", path, len(cookies))}
}

// Navigator reports the account behind the configured cookies.
type Navigator interface {
	Nav(ctx context.Context) (bilibili.Account, error)
}

// CheckSession asks the API who the cookies belong to.
func CheckSession(ctx context.Context, nav Navigator) Result {
	const name = "Session"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	acct, err := nav.Nav(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	if !acct.LoggedIn {
		return Result{Name: name, Detail: "not logged in (cookies expired?)"}
	}
	detail := fmt.Sprintf("logged in as %s (uid %d)", acct.Name, acct.MID)
	if acct.VIP == 1 {
		detail += ", vip"
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external binaries used by acquisition.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.FFmpegRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
