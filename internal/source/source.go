// Package source reads document text from files, stdin, xz streams and XML.
package source

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/FocuswithJustin/nespan/core/errors"
	"github.com/FocuswithJustin/nespan/core/xml"
	"github.com/FocuswithJustin/nespan/internal/validation"
	"github.com/ulikunitz/xz"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Injectable functions for testing.
var (
	osOpen      = os.Open
	xzNewReader = xz.NewReader
)

// Options controls how an input is read.
type Options struct {
	// Path is a file path, or "-" for Stdin.
	Path string
	// XPath, when set, parses the input as XML and keeps only the inner
	// text of matching nodes, joined with newlines.
	XPath string
	// MaxSize caps the decoded input in bytes. Zero means
	// validation.MaxFileSize.
	MaxSize int64
	// Stdin is read when Path is "-". Nil means os.Stdin.
	Stdin io.Reader
}

// Input is decoded document text and where it came from.
type Input struct {
	Source       string
	Text         string
	Type         validation.FileType
	Decompressed bool
	Queried      bool
}

// Load reads the input named by opts.
func Load(ctx context.Context, opts Options) (*Input, error) {
	if err := validation.ValidatePath(opts.Path); err != nil {
		return nil, invalid("path", opts.Path, err)
	}
	if opts.XPath != "" {
		if err := xml.CompileXPath(opts.XPath); err != nil {
			return nil, err
		}
	}
	limit := opts.MaxSize
	if limit <= 0 {
		limit = validation.MaxFileSize
	}

	var r io.Reader
	source := opts.Path
	if opts.Path == Stdin {
		source = "stdin"
		r = opts.Stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := osOpen(opts.Path)
		if err != nil {
			return nil, errors.NewIO("open", opts.Path, err)
		}
		defer f.Close()

		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			if err := validation.ValidateSize(info.Size(), limit); err != nil {
				return nil, invalid("size", opts.Path, err)
			}
		}
		r = f
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := &Input{Source: source}
	br := bufio.NewReaderSize(r, validation.HeaderSize)
	header, err := br.Peek(validation.HeaderSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.NewIO("read", source, err)
	}
	in.Type = validation.DetectFileType(header, opts.Path)

	var body io.Reader = br
	if in.Type == validation.FileTypeXZ {
		zr, err := xzNewReader(br)
		if err != nil {
			return nil, errors.NewIO("decompress", source, err)
		}
		body = zr
		in.Decompressed = true
	}

	data, err := readLimited(ctx, body, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", source)
	}

	if in.Decompressed {
		// Classify the decompressed payload.
		n := min(len(data), validation.HeaderSize)
		in.Type = validation.DetectFileType(data[:n], opts.Path)
	}

	if opts.XPath != "" {
		text, err := xml.ExtractText(data, opts.XPath)
		if err != nil {
			return nil, errors.Wrapf(err, "querying %s", source)
		}
		in.Text = text
		in.Type = validation.FileTypeXML
		in.Queried = true
		return in, nil
	}

	if err := validation.ValidateText(data); err != nil {
		return nil, invalid("content", source, err)
	}
	in.Text = string(data)
	return in, nil
}

// readLimited reads r to EOF, failing once more than limit bytes arrive or
// ctx is cancelled between chunks.
func readLimited(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: limit + 1}
	var out []byte
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := lr.Read(buf)
		out = append(out, buf[:n]...)
		if err := validation.ValidateSize(int64(len(out)), limit); err != nil {
			return nil, invalid("size", "", err)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.NewIO("read", "", err)
		}
	}
}

func invalid(field, value string, err error) *errors.ValidationError {
	return &errors.ValidationError{
		Field:   field,
		Value:   value,
		Message: err.Error(),
		Err:     err,
	}
}
