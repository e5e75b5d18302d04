// Command growbuf replays buffer operation scripts and prints how the
// growth and trim rules move capacity.
package main

import "github.com/graxinc/growbuf/cmd/growbuf/internal/cli"

func main() {
	cli.Execute()
}
