package prefs

import "fmt"

// Keys of the persisted client state. Only the session guard reads or writes TokenKey.
const (
	TokenKey    = "adminToken"
	LanguageKey = "language"
)

const defaultNamespace = "keyconsole"

// NamespacedKey scopes a preference key for stores shared between consoles.
func NamespacedKey(namespace, key string) string {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return fmt.Sprintf("%s:prefs:%s", namespace, key)
}
