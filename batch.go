package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	sourceExtension = ".jack"
	outputExtension = ".vm"
)

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

func getOutputPath(filePath string) string {
	return removeExtension(filePath) + outputExtension
}

func getTokensPath(filePath string) string {
	return removeExtension(filePath) + "T.xml"
}

// compileFile compiles one source with its own engine, so files never share
// label counters or symbols.
func compileFile(source []byte, trace *log.Logger) ([]string, string, error) {
	engine := NewCompilationEngine(EngineOptions{Logger: trace})
	lines, err := engine.Compile(bytes.NewReader(source))
	return lines, engine.className, err
}

// processFile compiles path and writes the .vm file next to it. Nothing is
// written when compilation fails.
func processFile(path string, options BatchOptions) (outputPath string, err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %q: %w", path, err)
	}

	lines, className, err := compileFile(source, options.Trace)
	if err != nil {
		return "", err
	}
	if className != getClassName(path) && options.Logger != nil {
		options.Logger.Printf("Warning: class %q is declared in %q", className, path)
	}

	var output bytes.Buffer
	if _, err := WriteLines(&output, lines); err != nil {
		return "", err
	}
	outputPath = getOutputPath(path)
	if err := os.WriteFile(outputPath, output.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("could not write %q: %w", outputPath, err)
	}

	if options.XML {
		if err := writeTokensFile(path, source); err != nil {
			return outputPath, err
		}
	}
	return outputPath, nil
}

func writeTokensFile(path string, source []byte) error {
	tokens, err := Tokenize(bytes.NewReader(source))
	if err != nil {
		return err
	}
	var output bytes.Buffer
	if err := WriteTokensXML(&output, tokens); err != nil {
		return err
	}
	tokensPath := getTokensPath(path)
	if err := os.WriteFile(tokensPath, output.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write %q: %w", tokensPath, err)
	}
	return nil
}

// collectFiles returns fileOrDir itself, or the .jack files directly inside
// it when it is a directory.
func collectFiles(fileOrDir string) (files []string, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file/dir %q: %w", fileOrDir, err)
	}

	if !fileOrDirStat.IsDir() {
		return []string{fileOrDir}, nil
	}

	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("could not open directory %q: %w", fileOrDir, err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != sourceExtension {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	return files, nil
}

type BatchOptions struct {
	// Jobs bounds how many files compile at once. Zero means GOMAXPROCS.
	Jobs int
	// FailFast stops starting new files after the first failure.
	FailFast bool
	// XML also writes the token dump of every file.
	XML bool
	// Logger receives progress messages. Nil is silent.
	Logger *log.Logger
	// Trace receives the parser trace of every file. Nil discards it.
	Trace *log.Logger
}

type FileResult struct {
	Path       string
	OutputPath string
	Err        error
}

// compileAll compiles files concurrently. Results are in input order. The
// returned error is the first failure in FailFast mode and nil otherwise;
// per-file errors are always reported in the results.
func compileAll(ctx context.Context, files []string, options BatchOptions) ([]FileResult, error) {
	jobs := options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logf := func(format string, args ...any) {
		if options.Logger != nil {
			options.Logger.Printf(format, args...)
		}
	}

	results := make([]FileResult, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for i, file := range files {
		results[i].Path = file
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			logf("Compiling file %q", file)
			outputPath, err := processFile(file, options)
			results[i].OutputPath = outputPath
			if err != nil {
				results[i].Err = err
				logf("Failed to compile %q: %v", file, err)
				if options.FailFast {
					return fmt.Errorf("compile %q: %w", file, err)
				}
				return nil
			}
			logf("Saved as %q", outputPath)
			return nil
		})
	}

	return results, group.Wait()
}
