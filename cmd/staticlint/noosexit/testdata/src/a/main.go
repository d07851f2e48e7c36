package main

import (
	"fmt"
	"os"
)

func cleanup() {
	fmt.Println("cleaning up")
}

func main() {
	defer cleanup()

	os.Exit(1) // want "avoid using os.Exit in main.main"
}

func helper() {
	os.Exit(2) // calls outside main are allowed
}
