package storage

import (
	"io"
	"mime/multipart"
)

// File is an in-memory upload handed to the gateway by handlers.
type File struct {
	Data []byte
	MIME string
	Name string
}

// LoadFile reads a multipart file header into memory.
func LoadFile(fh *multipart.FileHeader) (*File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &File{
		Data: data,
		MIME: fh.Header.Get("Content-Type"),
		Name: fh.Filename,
	}, nil
}
