package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
)

func main() {
	filename := flag.String("d", "", ".jack file to compile or directory containing .jack files")
	verbose := flag.Bool("v", false, "trace the parser on stderr")
	xmlOutput := flag.Bool("xml", false, "also write <Name>T.xml token files")
	jobs := flag.Int("j", 0, "number of files compiled concurrently (0 = GOMAXPROCS)")
	failFast := flag.Bool("fail-fast", false, "stop after the first file that fails to compile")

	flag.Parse()

	if *filename == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, *filename, BatchOptions{
		Jobs:     *jobs,
		FailFast: *failFast,
		XML:      *xmlOutput,
		Logger:   log.New(os.Stdout, "", 0),
		Trace:    traceLogger(*verbose),
	}))
}

func traceLogger(verbose bool) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, "trace: ", 0)
}

// run compiles every file under path and returns the process exit code.
func run(ctx context.Context, path string, options BatchOptions) int {
	files, err := collectFiles(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no %s files in %q\n", sourceExtension, path)
		return 1
	}

	results, err := compileAll(ctx, files, options)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, result := range results {
		if result.Err != nil {
			return 1
		}
	}
	return 0
}
