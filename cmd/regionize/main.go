// Command regionize groups TypeScript class and interface members, and Go
// interface methods, into captioned #region blocks.
package main

import "github.com/toejough/targ"

func main() {
	targ.Run(CLI{})
}
