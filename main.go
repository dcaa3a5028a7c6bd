// Package main is a thin pointer to the real CLI entry points.
// Use: go run ./cmd/a64core run <program.elf>
package main

import "fmt"

func main() {
	fmt.Println("a64core - A64 user-mode instruction set simulator")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/a64core run <program.elf>")
	fmt.Println("  go run ./cmd/a64core trace --categories=disasm,regs <program.elf>")
	fmt.Println("  go run ./cmd/a64core features")
	fmt.Println("  go run ./cmd/profile <program.elf>")
}
