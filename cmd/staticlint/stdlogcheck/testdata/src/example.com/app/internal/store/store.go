package store

import (
	"fmt"
	"log"
)

func Save(key string) error {
	log.Printf("saving %s", key) // want `log.Printf in internal package; use the injected \*zap.Logger`
	if key == "" {
		log.Fatal("empty key") // want `log.Fatal in internal package`
	}
	l := log.New(nil, "", 0)
	l.Println("method calls are not package functions")
	log.SetFlags(0)
	fmt.Println(key)
	return nil
}
