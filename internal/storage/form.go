package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

type formField struct {
	name, value string
}

// streamedForm is a multipart body produced on the fly, so the progress
// reader advances only as fast as the HTTP client drains the pipe.
type streamedForm struct {
	body        *io.PipeReader
	contentType string
	progress    *progressReader
	done        chan error
}

func streamForm(f File, fileField string, fields []formField, onProgress ProgressFunc) (*streamedForm, error) {
	if f.Open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	s := &streamedForm{
		body:        pr,
		contentType: mw.FormDataContentType(),
		progress:    newProgressReader(src, f.Size, onProgress),
		done:        make(chan error, 1),
	}

	go func() {
		defer func() { _ = src.Close() }()
		err := writeForm(mw, s.progress, f, fileField, fields)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
		s.done <- err
	}()

	return s, nil
}

func writeForm(mw *multipart.Writer, content io.Reader, f File, fileField string, fields []formField) error {
	for _, field := range fields {
		err := mw.WriteField(field.name, field.value)
		if err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fileField), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.contentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, content)
	return err
}

// wait unblocks a writer stuck on a request that stopped reading, then joins it.
func (s *streamedForm) wait() error {
	_ = s.body.Close()
	err := <-s.done
	if err == io.ErrClosedPipe {
		return nil
	}
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
