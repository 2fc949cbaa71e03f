/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package main

import "haven/cmd"

func main() {
	cmd.Execute()
}
