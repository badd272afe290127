package main

import "github.com/corazon/gymtrack/cmd/gymtrack"

func main() {
	gymtrack.Execute()
}
