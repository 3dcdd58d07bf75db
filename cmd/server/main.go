package main

import "github.com/mahendra/quickchat/internal/server"

func main() {
	srv := server.NewServer()
	srv.Run()
}
