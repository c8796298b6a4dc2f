package asm

type (
	Func struct {
		Name string
		Body []Instr
	}

	Instr any

	Directive struct {
		Name string
		Args []string
	}

	Label string

	Comment string
)
