// Package main provides the CLI entrypoint for wayglance.
package main

func main() {
	Execute()
}
