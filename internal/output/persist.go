// Package output names and persists finished export documents.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/repoflat/internal/services/clipboard"
)

const (
	outputDirectoryPermissions = 0o755
	outputFilePermissions      = 0o644
	clipboardDestination       = "clipboard"
	writerDestination          = "stdout"

	errorCreateDirectory = "create output directory %s: %w"
	errorWriteFile       = "write %s: %w"
	errorWriteStream     = "write document to %s: %w"
	errorCopyClipboard   = "copy document to clipboard: %w"
)

var errNoPersisters = errors.New("no output destination configured")

// Persister stores a finished document and reports where it went.
type Persister interface {
	Persist(content string, filename string) (string, error)
}

// FilePersister writes documents into Directory, creating it when missing.
type FilePersister struct {
	Directory string
}

func (persister FilePersister) Persist(content string, filename string) (string, error) {
	directory := persister.Directory
	if directory == "" {
		directory = "."
	}
	if err := os.MkdirAll(directory, outputDirectoryPermissions); err != nil {
		return "", fmt.Errorf(errorCreateDirectory, directory, err)
	}
	destination := filepath.Join(directory, filename)
	if err := os.WriteFile(destination, []byte(content), outputFilePermissions); err != nil {
		return "", fmt.Errorf(errorWriteFile, destination, err)
	}
	return destination, nil
}

// WriterPersister streams documents to Writer, typically standard output.
type WriterPersister struct {
	Writer io.Writer
	Label  string
}

func (persister WriterPersister) Persist(content string, _ string) (string, error) {
	label := persister.Label
	if label == "" {
		label = writerDestination
	}
	if _, err := io.WriteString(persister.Writer, content); err != nil {
		return "", fmt.Errorf(errorWriteStream, label, err)
	}
	return label, nil
}

// ClipboardPersister copies documents to the system clipboard.
type ClipboardPersister struct {
	Copier clipboard.Copier
}

func (persister ClipboardPersister) Persist(content string, _ string) (string, error) {
	if err := persister.Copier.Copy(content); err != nil {
		return "", fmt.Errorf(errorCopyClipboard, err)
	}
	return clipboardDestination, nil
}

// PersistAll hands content to every persister in order and stops at the first failure.
func PersistAll(persisters []Persister, content string, filename string) ([]string, error) {
	if len(persisters) == 0 {
		return nil, errNoPersisters
	}
	destinations := make([]string, 0, len(persisters))
	for _, persister := range persisters {
		destination, err := persister.Persist(content, filename)
		if err != nil {
			return destinations, err
		}
		destinations = append(destinations, destination)
	}
	return destinations, nil
}
