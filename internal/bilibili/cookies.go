package bilibili

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// LoadCookies reads a Netscape cookies.txt file and keeps the cookies for
// bilibili.com domains. Expired cookies are dropped.
func LoadCookies(path string, now time.Time) ([]*http.Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCookies(f, now)
}

// ParseCookies parses Netscape cookies.txt content.
func ParseCookies(r io.Reader, now time.Time) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("cookies line %d: want 7 tab-separated fields, got %d", lineNo, len(fields))
		}
		domain := strings.TrimSpace(fields[0])
		if !isBilibiliDomain(domain) {
			continue
		}
		expires, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cookies line %d: invalid expiry %q", lineNo, fields[4])
		}
		cookie := &http.Cookie{
			Domain:   domain,
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if expires > 0 {
			cookie.Expires = time.Unix(expires, 0)
			if cookie.Expires.Before(now) {
				continue
			}
		}
		cookies = append(cookies, cookie)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, errors.New("no bilibili.com cookies found")
	}
	return cookies, nil
}

// HasSession reports whether cookies carry a login session.
func HasSession(cookies []*http.Cookie) bool {
	for _, c := range cookies {
		if c.Name == "SESSDATA" && c.Value != "" {
			return true
		}
	}
	return false
}

func isBilibiliDomain(domain string) bool {
	d := strings.ToLower(strings.TrimPrefix(domain, "."))
	return d == "bilibili.com" || strings.HasSuffix(d, ".bilibili.com")
}
