// mftpserve is the mftp server: it accepts control connections on the
// configured port and serves each on its own goroutine until killed.
package main

import (
	"flag"
	"fmt"
	"os"

	"mftp/internal/config"
	"mftp/internal/server"
	log "mftp/pkg/minilog"
)

var (
	f_debug = flag.Bool("d", false, "enable diagnostic logging")
	f_help  = flag.Bool("h", false, "print usage and exit")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mftpserve [-d] [-h]")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *f_help {
		usage()
		os.Exit(0)
	}

	if flag.NArg() != 0 {
		usage()
		os.Exit(1)
	}

	level := log.INFO
	if *f_debug {
		level = log.DEBUG
	}
	log.Init(level)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal("getwd: %v", err)
	}

	srv := server.New(config.DefaultPort, cwd)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("%v", err)
	}
}
