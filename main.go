package main

import (
	"log"

	"txdemo/bootstrap"
)

func main() {
	log.Println("Starting txdemo...")
	if err := bootstrap.Run(); err != nil {
		log.Fatal(err)
	}
}
