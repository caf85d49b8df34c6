package main

import "github.com/soldier-zzr/sqgl/cmd"

func main() {
	cmd.Execute()
}
