// Package main writes a self-signed server certificate and key for running
// the marker service over HTTPS locally:
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//	TLS_CERT=certs/server.crt TLS_KEY=certs/server.key go run ./cmd/server
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/MapKeeper/internal/certgen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	validFor := fs.Duration("valid", 365*24*time.Hour, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var list []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			list = append(list, h)
		}
	}

	certPath, keyPath, err := certgen.WriteServerFiles(*dir, list, *validFor)
	if err != nil {
		return err
	}
	fmt.Printf("TLS_CERT=%s\nTLS_KEY=%s\n", certPath, keyPath)
	return nil
}
