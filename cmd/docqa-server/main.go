// Package main Document QA API Server
//
//	@title			Document QA API
//	@version		1.0
//	@description	Retrieval-augmented question answering over uploaded PDF documents
//
//	@contact.name	API Support
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	_ "docqa/docs" // This imports the docs package to initialize swagger
	"docqa/internal/server"
)

func main() {
	log.Println("Starting Document QA Server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
