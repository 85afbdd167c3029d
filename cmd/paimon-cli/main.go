// Package main provides the command-line interface for browsing and querying
// Paimon warehouses.
package main

func main() {
	Execute()
}
