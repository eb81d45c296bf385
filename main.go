package main

import "github.com/Manu343726/ksmtool/cmd"

func main() {
	cmd.Execute()
}
