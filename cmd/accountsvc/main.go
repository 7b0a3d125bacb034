package main

import "github.com/cathoderay/accountsvc/internal/cli"

func main() {
	cli.Execute()
}
