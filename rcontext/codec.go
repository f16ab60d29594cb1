package rcontext

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/ourritual/sdk-go/keys"
)

// Wire format: one `<path>: "<value>"` line per entry, lines sorted by path
// and joined with \n, the whole text base64url-encoded. Values are not
// escaped; a quote or newline inside a key or value corrupts that line only.
var (
	lineWithSection = regexp.MustCompile(`^` + keys.RootPrefix + `/([^/]+)/(.+?):\s*"([^"]*)"`)
	lineDirect      = regexp.MustCompile(`^` + keys.RootPrefix + `/([^:]+):\s*"([^"]*)"`)
)

// Encode serializes c into its transport-safe header form. Returns the empty
// string when c has nothing to carry.
func Encode(c *Context) string {
	m := c.ToMap()
	if len(m) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		lines = append(lines, k+`: "`+m[k]+`"`)
	}
	return base64.URLEncoding.EncodeToString([]byte(strings.Join(lines, "\n")))
}

// Decode parses a header produced by Encode into a new Context. It is total:
// blank input, malformed base64, and unparseable lines all degrade to an
// empty (or partially populated) Context, never an error.
func Decode(header string) *Context {
	c := New()
	if strings.TrimSpace(header) == "" {
		return c
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(header, "="))
	if err != nil {
		return c
	}
	for _, line := range strings.Split(string(decoded), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := lineWithSection.FindStringSubmatch(line); m != nil {
			if m[1] == "topic" && m[2] == "name" {
				c.SetTopic(m[3])
			}
			continue
		}
		if m := lineDirect.FindStringSubmatch(line); m != nil {
			// "topic" without a subpath would collide with the reserved
			// section, skip it.
			if m[1] != "topic" {
				c.SetCustom(m[1], m[2])
			}
		}
	}
	return c
}
