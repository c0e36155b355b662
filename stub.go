package main

import "minikern/kernel/kmain"

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// The boot code jumps to kmain.Kmain directly; main itself never runs on the
// target.
func main() {
	kmain.Kmain()
}
