// Command imagewin shows image files in windows, one window per file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(log.Llongfile)

	title := flag.String("title", "", "window title (default: file base name)")
	watch := flag.Bool("watch", false, "reopen a window when its file is rewritten")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: imagewin [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	v := newViewer(*title)
	if err := v.run(flag.Args(), *watch); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
