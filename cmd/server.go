package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/whisperchat/whisperd/server"
)

var (
	addr         = flag.String("addr", "localhost:8080", "address for whisperd to listen on")
	level        = flag.String("log-level", "INFO", "log level to print logs at")
	dbPath       = flag.String("db", "whisperd.db", "path to the sqlite database")
	schemaPath   = flag.String("schema", "schema.sql", "path to the schema file applied at startup")
	mediaDir     = flag.String("media-dir", ".", "directory decoded attachments are written under")
	mediaBaseURL = flag.String("media-base-url", "http://localhost:8080", "base URL attachments are served from")
	redisAddr    = flag.String("redis", "", "redis address for a shared presence registry (empty for in-process)")
	seed         = flag.Bool("seed", false, "seed development users and a shared room")
)

func main() {
	flag.Parse()

	srv, err := server.NewChatServer(server.Config{
		Addr:         *addr,
		DBPath:       *dbPath,
		SchemaPath:   *schemaPath,
		MediaDir:     *mediaDir,
		MediaBaseURL: *mediaBaseURL,
		RedisAddr:    *redisAddr,
		LogLevel:     *level,
		Seed:         *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "whisperd: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "whisperd: %v\n", err)
		os.Exit(1)
	}
}
