package model

import "strings"

const (
	maxOwnerLength = 39
	maxNameLength  = 100
)

// reservedOwners are first path segments the application routes itself. A
// project path never starts with one of them.
var reservedOwners = map[string]bool{
	"api":      true,
	"projects": true,
	"static":   true,
}

// IsValidRepoName reports whether owner/name could address a GitHub
// repository. Owners follow account rules: ASCII letters, digits and
// inner hyphens. Names may also contain dots and underscores but cannot be
// "." or "..".
func IsValidRepoName(owner, name string) bool {
	return isValidOwner(owner) && isValidName(name)
}

// isValidOwner reports whether owner is a well-formed, unreserved account
// name.
func isValidOwner(owner string) bool {
	if owner == "" || len(owner) > maxOwnerLength {
		return false
	}
	if owner[0] == '-' || owner[len(owner)-1] == '-' {
		return false
	}
	if reservedOwners[strings.ToLower(owner)] {
		return false
	}
	for _, ch := range owner {
		if !isAlphanumeric(ch) && ch != '-' {
			return false
		}
	}
	return true
}

func isValidName(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > maxNameLength {
		return false
	}
	for _, ch := range name {
		if !isAlphanumeric(ch) && ch != '-' && ch != '.' && ch != '_' {
			return false
		}
	}
	return true
}

func isAlphanumeric(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}
