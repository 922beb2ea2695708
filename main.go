// main.go
package main

import "karaoke-booking/cmd"

func main() {
	cmd.Execute()
}
