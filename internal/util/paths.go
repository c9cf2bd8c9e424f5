package util

import (
	"fmt"
	"os"
	"os/user"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPath returns p when set, otherwise the last path segment of other.
func DefaultPath(p, other string) string {
	if p != "" {
		return p
	}
	return LastSegment(other)
}

// LastSegment returns the final element of a slash-separated path,
// ignoring trailing slashes and any scheme prefix such as "hdfs://host".
func LastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ResolvePair fills in whichever side of a local/remote pair is empty with
// the last segment of the other side. Both empty stays both empty.
func ResolvePair(local, remote string) (string, string) {
	return DefaultPath(local, remote), DefaultPath(remote, local)
}

// ExpandRemoteHome replaces a leading ~ with the remote home directory.
func ExpandRemoteHome(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return strings.TrimRight(home, "/") + p[1:]
	}
	return p
}

// SanitizeName flattens a path into something usable as a single file name.
func SanitizeName(p string) string {
	return strings.ReplaceAll(p, "/", "_")
}

// TempName returns a staging path of the form <dir>/<stem>_<nanos>-<id>[.ext].
// The uuid fragment keeps two calls within the same clock tick apart.
func TempName(dir, stem, ext string) string {
	id := uuid.NewString()[:8]
	name := fmt.Sprintf("%s_%d-%s", stem, time.Now().UnixNano(), id)
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// PasswordKey is the credential-store service name for a profile secret.
func PasswordKey(profile, kind string) string {
	return profile + "_" + kind
}

// CurrentUser returns the local username used as the keyring account.
func CurrentUser() string {
	for _, env := range []string{"USER", "LOGNAME", "USERNAME"} {
		if u := os.Getenv(env); u != "" {
			return u
		}
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "user"
}
