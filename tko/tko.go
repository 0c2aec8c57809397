// Package tko reads and writes Tinker binary images.
//
// An image is a fixed size header of five little-endian 64-bit words,
// followed by the code region and then the data region:
//
//	offset  size     field
//	0       8        reserved, 0
//	8       8        code base address
//	16      8        code length in bytes
//	24      8        data base address
//	32      8        data length in bytes
//	40      codeLen  code bytes
//	40+cL   dataLen  data bytes
package tko

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/ezrec/tinker/translate"
)

var f = translate.From

const (
	HEADER_SIZE = 40
	REGION_MAX  = 1 << 32 // Sanity limit on region lengths.
)

var (
	ErrHeaderReserved = errors.New(f("image header reserved word not zero"))
	ErrRegionSize     = errors.New(f("image region too large"))
	ErrTruncated      = errors.New(f("image truncated"))
)

// Header is the fixed image header.
type Header struct {
	Reserved uint64
	CodeBase uint64
	CodeSize uint64
	DataBase uint64
	DataSize uint64
}

// Image is a loadable program image.
type Image struct {
	Header
	Code []byte
	Data []byte
}

// NewImage creates an image from its regions.
func NewImage(codeBase uint64, code []byte, dataBase uint64, data []byte) *Image {
	return &Image{
		Header: Header{
			CodeBase: codeBase,
			CodeSize: uint64(len(code)),
			DataBase: dataBase,
			DataSize: uint64(len(data)),
		},
		Code: code,
		Data: data,
	}
}

// WriteTo writes the image to a stream.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	hdr := img.Header
	hdr.Reserved = 0
	hdr.CodeSize = uint64(len(img.Code))
	hdr.DataSize = uint64(len(img.Data))

	err = binary.Write(w, binary.LittleEndian, &hdr)
	if err != nil {
		return
	}
	n = HEADER_SIZE

	for _, region := range [][]byte{img.Code, img.Data} {
		var wrote int
		wrote, err = w.Write(region)
		n += int64(wrote)
		if err != nil {
			return
		}
	}

	return
}

// Read reads an image from a stream.
func Read(r io.Reader) (img *Image, err error) {
	img = &Image{}

	err = binary.Read(r, binary.LittleEndian, &img.Header)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncated
		}
		img = nil
		return
	}

	if img.Reserved != 0 {
		img = nil
		err = ErrHeaderReserved
		return
	}

	if img.CodeSize > REGION_MAX || img.DataSize > REGION_MAX {
		img = nil
		err = ErrRegionSize
		return
	}

	img.Code = make([]byte, img.CodeSize)
	img.Data = make([]byte, img.DataSize)
	for _, region := range [][]byte{img.Code, img.Data} {
		_, err = io.ReadFull(r, region)
		if err != nil {
			img = nil
			err = ErrTruncated
			return
		}
	}

	return
}

// ReadFile reads an image from a file.
func ReadFile(path string) (img *Image, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return Read(inf)
}

// WriteFile writes an image to a file. On any failure the partially
// written file is removed.
func WriteFile(path string, img *Image) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	_, err = img.WriteTo(ouf)
	return
}
