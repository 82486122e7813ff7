package idl

import (
	"crypto/sha256"
	"strings"
	"unicode"
)

// Discriminator Anchor 8 字节判别前缀
type Discriminator [8]byte

// InstructionDiscriminator sha256("global:<snake_name>")[:8]
func InstructionDiscriminator(name string) Discriminator {
	return sighash("global", toSnake(name))
}

// AccountDiscriminator sha256("account:<PascalName>")[:8]
func AccountDiscriminator(name string) Discriminator {
	return sighash("account", toPascal(name))
}

func sighash(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// adminCancelTask -> admin_cancel_task
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// config -> Config, instructionData -> InstructionData
func toPascal(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
