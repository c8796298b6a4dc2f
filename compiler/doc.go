/*

Process of compilation

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	front (symtab) ->
Intermediate Representation (ir) ->
	format -> Koopa Text
	back   -> RISC-V Assembly Text
	llgen  -> LLVM IR Text

Assembly Text ->
	rvsim ->
Return Value in a0

*/
package compiler
