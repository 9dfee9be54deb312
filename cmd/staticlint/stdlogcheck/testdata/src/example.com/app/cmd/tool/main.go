package main

import "log"

func main() {
	log.Println("commands may use the standard logger")
}
