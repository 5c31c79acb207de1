package domain

import (
	"strings"
	"unicode/utf8"
)

// Key é o nome do personagem normalizado (trim + lower-case).
// É a identidade usada no cache, no single-flight e nas estatísticas.
type Key string

func NormalizeKey(raw string) Key {
	return Key(strings.ToLower(strings.TrimSpace(raw)))
}

// NameLength conta runas, não bytes: nomes podem ter acentos.
func NameLength(name string) int {
	return utf8.RuneCountInString(strings.TrimSpace(name))
}
