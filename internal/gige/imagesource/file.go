package imagesource

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/protolab/gigemc/internal/gige"
)

// FileSource decodes a single still image once and repeats it forever.
type FileSource struct {
	frame Frame
}

// NewFileSource decodes path into the given pixel format.
func NewFileSource(path string, format gige.PixelFormat) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagesource: open %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagesource: decode %q: %w", path, err)
	}
	frame, err := decodeToFrame(img, format)
	if err != nil {
		return nil, err
	}
	return &FileSource{frame: frame}, nil
}

// Next always returns the same decoded frame.
func (s *FileSource) Next() (Frame, error) {
	return s.frame, nil
}

// FolderSource cycles through every .png/.jpg/.jpeg file in a
// directory, sorted by name, decoding each in turn and wrapping back
// to the first once the last is reached.
type FolderSource struct {
	paths  []string
	format gige.PixelFormat
	next   int
}

// NewFolderSource globs dir for images.
func NewFolderSource(dir string, format gige.PixelFormat) (*FolderSource, error) {
	var paths []string
	for _, pattern := range []string{"*.png", "*.jpg", "*.jpeg"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("imagesource: glob %q: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("imagesource: no images found in %q", dir)
	}
	sort.Strings(paths)
	return &FolderSource{paths: paths, format: format}, nil
}

// Next decodes and returns the next file in the folder, wrapping
// around to the first after the last.
func (s *FolderSource) Next() (Frame, error) {
	path := s.paths[s.next%len(s.paths)]
	s.next++

	f, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("imagesource: open %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("imagesource: decode %q: %w", path, err)
	}
	return decodeToFrame(img, s.format)
}
