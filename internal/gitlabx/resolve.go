package gitlabx

import (
	"strconv"
	"strings"
)

// ExpandProjectRef turns a user-supplied project reference into the id or
// full path sent to the API.
//
//	"12345"          -> "12345"
//	"app"            -> "<group-path>/app"
//	"devops/app"     -> "<namespace>/devops/app"
//	"a/b/c"          -> "a/b/c"
func ExpandProjectRef(ref string, scope Scope) string {
	ref = strings.TrimSpace(ref)
	if _, err := strconv.Atoi(ref); err == nil {
		return ref
	}

	trimmed := strings.Trim(ref, "/")
	switch parts := strings.Split(trimmed, "/"); {
	case len(parts) < 2:
		return joinPath(scope.GroupPath, trimmed)
	case len(parts) < 3:
		return joinPath(scope.Namespace, trimmed)
	default:
		return trimmed
	}
}

// ExpandGroupRef turns a group reference into the id or full path sent to the
// API. Single-segment names are placed under the default namespace.
func ExpandGroupRef(ref string, scope Scope) string {
	ref = strings.TrimSpace(ref)
	if _, err := strconv.Atoi(ref); err == nil {
		return ref
	}

	trimmed := strings.TrimSuffix(ref, "/")
	if !strings.Contains(trimmed, "/") {
		return joinPath(scope.Namespace, trimmed)
	}
	return trimmed
}

// pid converts an expanded reference into the value client-go accepts.
func pid(ref string) interface{} {
	if id, err := strconv.Atoi(ref); err == nil {
		return id
	}
	return ref
}

func joinPath(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
