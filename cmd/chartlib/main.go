package main

import "github.com/starburst997/charts-library/internal/cmd"

func main() {
	cmd.Execute()
}
