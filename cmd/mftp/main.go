// mftp is the client half of the file transfer system: it connects to a
// server's control port and drives an interactive command prompt.
package main

import (
	"flag"
	"fmt"
	"os"

	"mftp/internal/client"
	"mftp/internal/config"
	log "mftp/pkg/minilog"
)

var (
	f_debug = flag.Bool("d", false, "enable diagnostic logging")
	f_help  = flag.Bool("h", false, "print usage and exit")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mftp [-d] [-h] HOSTNAME")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *f_help {
		usage()
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	host := flag.Arg(0)

	level := log.INFO
	if *f_debug {
		level = log.DEBUG
	}
	log.Init(level)

	c, err := client.Dial(host, config.DefaultPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mftp: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	c.Attach(config.Prompt)
}
