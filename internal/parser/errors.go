package parser

import "fmt"

// ReadError reports a document that could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// FrontMatterError reports a delimited front-matter block whose body is not
// a valid YAML mapping.
type FrontMatterError struct {
	Path string
	Err  error
}

func (e *FrontMatterError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("front matter: %v", e.Err)
	}
	return fmt.Sprintf("front matter in %s: %v", e.Path, e.Err)
}

func (e *FrontMatterError) Unwrap() error { return e.Err }
