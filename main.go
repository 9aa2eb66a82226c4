package main

import (
	"os"

	"quill/cmd"
)

// @title Quill Blog API
// @version 1.0
// @description A blog with posts, tags, likes, comments, search and user profiles

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
