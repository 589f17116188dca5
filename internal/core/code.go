package core

import (
	"math/rand/v2"

	"github.com/vardhanngg/socket-v/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces candidate session codes. Uniqueness is the registry's job.
type CodeGenerator interface {
	Generate() domain.SessionCode
}

// CodeGeneratorFunc adapts a plain function.
type CodeGeneratorFunc func() domain.SessionCode

func (f CodeGeneratorFunc) Generate() domain.SessionCode { return f() }

type randomCodes struct {
	intN func(n int) int
}

func NewCodeGenerator() CodeGenerator {
	return randomCodes{intN: rand.IntN}
}

func (g randomCodes) Generate() domain.SessionCode {
	b := make([]byte, domain.CodeLength)
	for i := range b {
		b[i] = codeAlphabet[g.intN(len(codeAlphabet))]
	}
	return domain.SessionCode(b)
}
