// Package deeplink builds and parses the in-app navigation URIs carried by
// notifications.
package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Scheme    = "mlnotify"
	Authority = "tasks"

	taskDetailSegment = "taskDetail"
)

// TaskDetail returns the URI that opens the detail view for a task.
func TaskDetail(processID string) string {
	return fmt.Sprintf("%s://%s/%s/%s", Scheme, Authority, taskDetailSegment, url.PathEscape(processID))
}

// ParseTaskDetail extracts the process id from a task-detail URI. Any URI
// that is not a task-detail link is an error.
func ParseTaskDetail(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing deep link: %w", err)
	}
	if u.Scheme != Scheme || u.Host != Authority {
		return "", fmt.Errorf("not a %s://%s link: %s", Scheme, Authority, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != taskDetailSegment || parts[1] == "" {
		return "", fmt.Errorf("not a task detail link: %s", raw)
	}

	processID, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", fmt.Errorf("parsing deep link: %w", err)
	}
	return processID, nil
}
